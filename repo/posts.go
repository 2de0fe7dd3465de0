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


package repo

import (
	"time"

	"github.com/opencohort/mockdb"
	"github.com/opencohort/mockdb/collection"
	"github.com/opencohort/mockdb/core"
)

// Points granted to an author when their post or comment gains an
// upvote.
const upvotePoints = 5

// EnrichedPost is a post assembled with its relations. Dangling
// references leave the related field nil or empty rather than failing.
type EnrichedPost struct {
	*core.Post
	Author   *core.User      `json:"author,omitempty"`
	Comments []*core.Comment `json:"comments"`
	Tags     []string        `json:"tags"`
}

// VoteResult reports the target's counters after a vote call, plus what
// the call did to the caller's vote record.
type VoteResult struct {
	Upvotes   int
	Downvotes int
	Score     int
	Removed   bool // same-type vote toggled off
	Flipped   bool // opposite-type vote replaced
}

// PostRepository owns forum posts and the voting, bookmarking and view
// bookkeeping around them.
type PostRepository struct {
	Repository[*core.Post]
	points *PointsRepository
	now    func() time.Time
}

// NewPostRepository creates a post repository. Upvote awards flow
// through the given points repository so daily caps apply.
func NewPostRepository(db *mockdb.Database, points *PointsRepository) *PostRepository {
	if points == nil {
		points = NewPointsRepository(db)
	}
	return &PostRepository{
		Repository: newRepository(db, db.Posts()),
		points:     points,
		now:        time.Now,
	}
}

// Create validates and stores a post.
func (r *PostRepository) Create(post *core.Post) (*core.Post, error) {
	if err := core.ValidatePost(post); err != nil {
		return nil, err
	}
	return r.Repository.Create(post)
}

// Hot returns the highest-scoring posts.
func (r *PostRepository) Hot(limit int) []*core.Post {
	return r.Find(&collection.Query[*core.Post]{
		OrderBy: &collection.Order{Field: "score", Desc: true},
		Limit:   limit,
	})
}

// ByAuthor returns an author's posts in insertion order.
func (r *PostRepository) ByAuthor(authorID string) []*core.Post {
	return r.Find(whereField[*core.Post]("authorId", authorID))
}

// Enriched assembles one post with its author, comments and tags.
func (r *PostRepository) Enriched(id string) (*EnrichedPost, bool) {
	post, ok := r.Get(id)
	if !ok {
		return nil, false
	}

	enriched := &EnrichedPost{
		Post:     post,
		Comments: r.db.Comments().FindMany(whereField[*core.Comment]("postId", id)),
		Tags:     tagsOf(r.db.PostTags().FindMany(whereField[*core.PostTag]("postId", id))),
	}
	if author, ok := r.db.Users().FindByID(post.AuthorID); ok {
		enriched.Author = author
	}
	return enriched, true
}

// AllEnriched assembles every post with its relations, pre-indexing the
// sibling collections once instead of querying them per post.
func (r *PostRepository) AllEnriched() []*EnrichedPost {
	users := IndexBy(r.db.Users().ToArray(), func(u *core.User) string { return u.ID })
	comments := GroupBy(r.db.Comments().ToArray(), func(c *core.Comment) string { return c.PostID })
	tags := GroupBy(r.db.PostTags().ToArray(), func(t *core.PostTag) string { return t.PostID })

	posts := r.All()
	enriched := make([]*EnrichedPost, 0, len(posts))
	for _, post := range posts {
		e := &EnrichedPost{
			Post:     post,
			Comments: comments[post.ID],
			Tags:     tagsOf(tags[post.ID]),
		}
		if e.Comments == nil {
			e.Comments = []*core.Comment{}
		}
		if author, ok := users[post.AuthorID]; ok {
			e.Author = author
		}
		enriched = append(enriched, e)
	}
	return enriched
}

// AddComment appends a comment to an existing post and bumps its cached
// comment count.
func (r *PostRepository) AddComment(postID, authorID, body string) (*core.Comment, bool) {
	if !r.db.Posts().Exists(postID) {
		return nil, false
	}
	comment, err := createIn(r.db, r.db.Comments(), &core.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     body,
	})
	if err != nil {
		return nil, false
	}
	r.Update(postID, func(p *core.Post) { p.CommentCount++ })
	return comment, true
}

// Vote records one user's vote on a post or comment. A user holds at
// most one vote per target: re-submitting the same type removes it,
// submitting the opposite type flips it. The target's cached counters
// are adjusted incrementally, never recomputed by scan. A fresh upvote
// awards community points to the target's author, subject to the daily
// cap.
//
// ok is false when the target does not exist; err reports invalid vote
// or target types only.
func (r *PostRepository) Vote(targetType core.TargetType, targetID, userID string, voteType core.VoteType) (*VoteResult, bool, error) {
	vote := &core.Vote{
		UserID:     userID,
		TargetType: targetType,
		TargetID:   targetID,
		Type:       voteType,
	}
	if err := core.ValidateVote(vote); err != nil {
		return nil, false, err
	}

	authorID, ok := r.targetAuthor(targetType, targetID)
	if !ok {
		return nil, false, nil
	}

	existing, hasVote := r.db.Votes().FindFirst(&collection.Query[*core.Vote]{
		Where: collection.Match(func(v *core.Vote) bool {
			return v.UserID == userID && v.TargetType == targetType && v.TargetID == targetID
		}),
	})

	result := &VoteResult{}
	var deltaUp, deltaDown int
	switch {
	case !hasVote:
		if _, err := createIn(r.db, r.db.Votes(), vote); err != nil {
			return nil, false, err
		}
		if voteType == core.VoteUp {
			deltaUp = 1
		} else {
			deltaDown = 1
		}
	case existing.Type == voteType:
		deleteIn(r.db, r.db.Votes(), existing.ID)
		result.Removed = true
		if voteType == core.VoteUp {
			deltaUp = -1
		} else {
			deltaDown = -1
		}
	default:
		updateIn(r.db, r.db.Votes(), existing.ID, func(v *core.Vote) { v.Type = voteType })
		result.Flipped = true
		if voteType == core.VoteUp {
			deltaUp, deltaDown = 1, -1
		} else {
			deltaUp, deltaDown = -1, 1
		}
	}

	up, down, score := r.applyVoteDeltas(targetType, targetID, deltaUp, deltaDown)
	result.Upvotes = up
	result.Downvotes = down
	result.Score = score

	// Fresh upvotes earn the author community points; toggles and
	// flips do not re-award.
	if !hasVote && voteType == core.VoteUp && authorID != "" {
		if _, err := r.points.Award(authorID, core.PointsCommunity, ActionUpvoteReceived, upvotePoints); err != nil {
			return nil, false, err
		}
	}
	return result, true, nil
}

// targetAuthor resolves the voted target's author, reporting whether
// the target exists at all.
func (r *PostRepository) targetAuthor(targetType core.TargetType, targetID string) (string, bool) {
	switch targetType {
	case core.TargetPost:
		if post, ok := r.db.Posts().FindByID(targetID); ok {
			return post.AuthorID, true
		}
	case core.TargetComment:
		if comment, ok := r.db.Comments().FindByID(targetID); ok {
			return comment.AuthorID, true
		}
	}
	return "", false
}

func (r *PostRepository) applyVoteDeltas(targetType core.TargetType, targetID string, deltaUp, deltaDown int) (up, down, score int) {
	switch targetType {
	case core.TargetPost:
		if post, ok := r.Update(targetID, func(p *core.Post) {
			p.Upvotes += deltaUp
			p.Downvotes += deltaDown
			p.Score += deltaUp - deltaDown
		}); ok {
			return post.Upvotes, post.Downvotes, post.Score
		}
	case core.TargetComment:
		if comment, ok := updateIn(r.db, r.db.Comments(), targetID, func(c *core.Comment) {
			c.Upvotes += deltaUp
			c.Downvotes += deltaDown
			c.Score += deltaUp - deltaDown
		}); ok {
			return comment.Upvotes, comment.Downvotes, comment.Score
		}
	}
	return 0, 0, 0
}

// Bookmark toggles a user's bookmark on a post. It returns whether the
// post is bookmarked after the call.
func (r *PostRepository) Bookmark(postID, userID string) (bookmarked, ok bool) {
	if !r.db.Posts().Exists(postID) {
		return false, false
	}
	existing, has := r.db.Bookmarks().FindFirst(&collection.Query[*core.Bookmark]{
		Where: collection.Match(func(b *core.Bookmark) bool {
			return b.PostID == postID && b.UserID == userID
		}),
	})
	if has {
		deleteIn(r.db, r.db.Bookmarks(), existing.ID)
		return false, true
	}
	if _, err := createIn(r.db, r.db.Bookmarks(), &core.Bookmark{PostID: postID, UserID: userID}); err != nil {
		return false, false
	}
	return true, true
}

// BookmarkedBy returns the posts a user has bookmarked, in bookmark
// order. Bookmarks pointing at deleted posts are skipped.
func (r *PostRepository) BookmarkedBy(userID string) []*core.Post {
	marks := r.db.Bookmarks().FindMany(whereField[*core.Bookmark]("userId", userID))
	posts := make([]*core.Post, 0, len(marks))
	for _, mark := range marks {
		if post, ok := r.Get(mark.PostID); ok {
			posts = append(posts, post)
		}
	}
	return posts
}

// TrackView records a view row and bumps the post's cached counter.
func (r *PostRepository) TrackView(postID, userID string) (*core.Post, bool) {
	if !r.db.Posts().Exists(postID) {
		return nil, false
	}
	if _, err := createIn(r.db, r.db.PostViews(), &core.PostView{
		PostID:   postID,
		UserID:   userID,
		ViewedAt: r.now().UTC(),
	}); err != nil {
		return nil, false
	}
	return r.Update(postID, func(p *core.Post) { p.ViewCount++ })
}

func tagsOf(rows []*core.PostTag) []string {
	tags := make([]string, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, row.Tag)
	}
	return tags
}
