// Copyright 2025 The OpenCohort Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import "errors"

// Domain validation errors
var (
	// ErrDuplicateID indicates a create call supplied an id that already
	// exists in the collection.
	ErrDuplicateID = errors.New("duplicate record id")

	// ErrInvalidVote indicates a Vote failed validation.
	ErrInvalidVote = errors.New("invalid vote")

	// ErrInvalidVoteType indicates an unknown vote type value.
	ErrInvalidVoteType = errors.New("invalid vote type")

	// ErrInvalidTargetType indicates an unknown vote target type.
	ErrInvalidTargetType = errors.New("invalid target type")

	// ErrNegativePoints indicates a point award with a negative amount.
	ErrNegativePoints = errors.New("point amount cannot be negative")

	// ErrInvalidQuestion indicates a Question failed validation.
	ErrInvalidQuestion = errors.New("invalid question")

	// ErrEmptyTitle indicates a required title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyUserID indicates a required user id field is empty.
	ErrEmptyUserID = errors.New("user id cannot be empty")
)
