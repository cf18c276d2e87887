package main

import (
	"context"
	"strings"

	"devblog/internal/content"
	"devblog/internal/models"
	"devblog/internal/service"
)

const timeLayout = "2006-01-02 15:04"

func (c *cli) printSummary(p *models.Post) {
	category := p.Category
	if category == "" {
		category = "Uncategorized"
	}
	c.printf("* %s  [%s]  #/post/%s\n", p.Title, category, p.Slug)
	c.printf("  by %s on %s, %d min read, %d likes, %d comments\n",
		p.Author.Name, p.CreatedAt.Format("2006-01-02"), content.EstimateReadTime(p.Content), p.Likes, len(p.Comments))
	if p.Excerpt != "" {
		c.printf("  %s\n", p.Excerpt)
	}
	if len(p.Tags) > 0 {
		c.printf("  tags: %s\n", strings.Join(p.Tags, ", "))
	}
}

func (c *cli) showPost(ctx context.Context, p *models.Post) {
	c.printf("%s\n%s\n", p.Title, strings.Repeat("=", len([]rune(p.Title))))
	c.printf("by %s, %s, %d min read\n", p.Author.Name, p.CreatedAt.Format(timeLayout), content.EstimateReadTime(p.Content))
	if p.Category != "" {
		c.printf("category: %s\n", p.Category)
	}
	if len(p.Tags) > 0 {
		c.printf("tags: %s\n", strings.Join(p.Tags, ", "))
	}
	if !p.Published {
		c.printf("(draft)\n")
	}

	liked := ""
	if c.rt.Posts.IsLiked(ctx, p.ID) {
		liked = " (you liked this)"
	}
	bookmarked := ""
	if user := c.rt.Auth.GetCurrentUser(ctx); user != nil && p.IsBookmarkedBy(user.ID) {
		bookmarked = ", bookmarked"
	}
	c.printf("%d likes%s%s\n\n", p.Likes, liked, bookmarked)

	c.printf("%s\n\n", content.StripHTML(p.Content))

	comments := service.SortedComments(p)
	c.printf("Comments (%d)\n", len(comments))
	for _, cm := range comments {
		name := cm.AuthorName
		if name == "" {
			name = "Anonymous"
		}
		c.printf("- %s, %s [%s]: %s\n", name, cm.CreatedAt.Format(timeLayout), cm.ID, cm.Content)
	}
}
