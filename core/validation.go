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

import "fmt"

// ValidateVoteType validates a VoteType value.
func ValidateVoteType(t VoteType) error {
	switch t {
	case VoteUp, VoteDown:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidVoteType, t)
	}
}

// ValidateTargetType validates a vote TargetType value.
func ValidateTargetType(t TargetType) error {
	switch t {
	case TargetPost, TargetComment:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTargetType, t)
	}
}

// ValidateVote validates a Vote according to domain rules.
//
// Validation rules:
//   - UserID must not be empty
//   - TargetType must be post or comment
//   - Type must be upvote or downvote
//
// NOT validated:
//   - TargetID existence (dangling references are tolerated)
//   - ID (empty is valid; the collection generates one)
func ValidateVote(vote *Vote) error {
	if vote == nil {
		return fmt.Errorf("%w: vote is nil", ErrInvalidVote)
	}

	if vote.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidVote, ErrEmptyUserID)
	}

	if err := ValidateTargetType(vote.TargetType); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVote, err)
	}

	if err := ValidateVoteType(vote.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidVote, err)
	}

	return nil
}

// ValidatePost validates a Post according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - AuthorID must not be empty
func ValidatePost(post *Post) error {
	if post == nil {
		return fmt.Errorf("%w: post is nil", ErrEmptyTitle)
	}
	if post.Title == "" {
		return ErrEmptyTitle
	}
	if post.AuthorID == "" {
		return ErrEmptyUserID
	}
	return nil
}

// ValidateQuestion validates a Question according to domain rules.
//
// Validation rules:
//   - Prompt must not be empty
//   - Type must be a known question type
//   - Points must be positive
//   - Free-text questions must carry at least one grading keyword
func ValidateQuestion(q *Question) error {
	if q == nil {
		return fmt.Errorf("%w: question is nil", ErrInvalidQuestion)
	}

	if q.Prompt == "" {
		return fmt.Errorf("%w: prompt cannot be empty", ErrInvalidQuestion)
	}

	switch q.Type {
	case QuestionChoice, QuestionTrueFalse, QuestionFreeText:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidQuestion, q.Type)
	}

	if q.Points <= 0 {
		return fmt.Errorf("%w: points must be positive", ErrInvalidQuestion)
	}

	if q.Type == QuestionFreeText && len(q.Keywords) == 0 {
		return fmt.Errorf("%w: free-text question needs grading keywords", ErrInvalidQuestion)
	}

	return nil
}
