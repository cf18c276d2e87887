package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"devblog/internal/bootstrap"
	"devblog/internal/models"
	"devblog/internal/query"
	"devblog/internal/route"
	"devblog/internal/seed"
	"devblog/internal/server"
	"devblog/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

var errUsage = errors.New("invalid usage, run 'devblog help'")

type cli struct {
	rt  *bootstrap.Runtime
	out io.Writer
}

func (c *cli) printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

func (c *cli) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return c.signup(ctx, args)
	case "login":
		return c.login(ctx, args)
	case "logout":
		c.rt.Auth.Logout(ctx)
		c.printf("Signed out\n")
		return nil
	case "whoami":
		return c.whoami(ctx)
	case "post":
		return c.post(ctx, args)
	case "browse":
		raw := "#/"
		if len(args) > 0 {
			raw = args[0]
		}
		return c.browse(ctx, raw)
	case "manage":
		return c.manage(ctx)
	case "profile":
		return c.profile(ctx)
	case "like":
		return c.like(ctx, args)
	case "bookmark":
		return c.bookmark(ctx, args)
	case "comment":
		return c.comment(ctx, args)
	case "reset":
		c.rt.Store.ResetAll(ctx)
		c.printf("All data reset to the demo content\n")
		return nil
	case "seed":
		return c.seed(ctx, args)
	case "metrics":
		return c.metrics()
	case "serve":
		return c.serve(ctx, args)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (c *cli) signup(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	name := fs.String("name", "", "Display name")
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	user, err := c.rt.Auth.Signup(ctx, service.SignupInput{Name: *name, Email: *email, Password: *password})
	if err != nil {
		return err
	}
	c.printf("Welcome, %s! Signed in as %s (%s)\n", user.Name, user.Email, user.ID)
	return nil
}

func (c *cli) login(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	email := fs.String("email", "", "Email address")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	user, err := c.rt.Auth.Login(ctx, *email, *password)
	if err != nil {
		return err
	}
	c.printf("Welcome back, %s\n", user.Name)
	return nil
}

func (c *cli) whoami(ctx context.Context) error {
	user := c.rt.Auth.GetCurrentUser(ctx)
	if user == nil {
		c.printf("Not signed in\n")
		return nil
	}
	c.printf("%s <%s> (%s)\n", user.Name, user.Email, user.ID)
	return nil
}

func (c *cli) requireUser(ctx context.Context) (*models.User, error) {
	user := c.rt.Auth.GetCurrentUser(ctx)
	if user == nil {
		return nil, models.NewAuthError("Must be logged in")
	}
	return user, nil
}

// resolvePost accepts either a slug or a post ID.
func (c *cli) resolvePost(ctx context.Context, ref string) (*models.Post, error) {
	if p := c.rt.Posts.GetPostBySlug(ctx, ref); p != nil {
		return p, nil
	}
	if p := c.rt.Posts.GetPostByID(ctx, ref); p != nil {
		return p, nil
	}
	return nil, models.NewNotFoundError("Post", ref)
}

type postFlags struct {
	fs       *flag.FlagSet
	title    *string
	content  *string
	category *string
	tags     *string
	excerpt  *string
	cover    *string
	publish  *bool
}

func newPostFlags(name string) *postFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	return &postFlags{
		fs:       fs,
		title:    fs.String("title", "", "Post title"),
		content:  fs.String("content", "", "HTML body"),
		category: fs.String("category", "", "Category label"),
		tags:     fs.String("tags", "", "Comma-separated tags"),
		excerpt:  fs.String("excerpt", "", "Short summary (defaults to the start of the body)"),
		cover:    fs.String("cover", "", "Cover image URL"),
		publish:  fs.Bool("publish", false, "Publish the post"),
	}
}

// apply overlays every flag that was set on the command line onto in.
func (f *postFlags) apply(in *service.SavePostInput) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "title":
			in.Title = *f.title
		case "content":
			in.Content = *f.content
		case "category":
			in.Category = *f.category
		case "tags":
			in.Tags = strings.Split(*f.tags, ",")
		case "excerpt":
			in.Excerpt = *f.excerpt
		case "cover":
			in.CoverImage = *f.cover
		case "publish":
			in.Published = *f.publish
		}
	})
}

func (c *cli) post(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	sub, rest := args[0], args[1:]

	switch sub {
	case "create":
		pf := newPostFlags("post create")
		if err := pf.fs.Parse(rest); err != nil {
			return errUsage
		}
		var in service.SavePostInput
		pf.apply(&in)

		post, err := c.rt.Posts.SavePost(ctx, in)
		if err != nil {
			return err
		}
		c.printf("Created %q at #/post/%s (%s)\n", post.Title, post.Slug, post.ID)
		return nil

	case "edit":
		if len(rest) == 0 {
			return errUsage
		}
		user, err := c.requireUser(ctx)
		if err != nil {
			return err
		}
		existing := c.rt.Posts.GetPostByID(ctx, rest[0])
		if existing == nil {
			return models.NewNotFoundError("Post", rest[0])
		}

		pf := newPostFlags("post edit")
		if err := pf.fs.Parse(rest[1:]); err != nil {
			return errUsage
		}
		in := service.SavePostInput{
			ID:         existing.ID,
			Title:      existing.Title,
			Category:   existing.Category,
			Tags:       existing.Tags,
			Excerpt:    existing.Excerpt,
			Content:    existing.Content,
			CoverImage: existing.CoverImage,
			Published:  existing.Published,
		}
		pf.apply(&in)

		post, err := c.rt.Posts.UpdatePostAs(ctx, user.ID, in)
		if err != nil {
			return err
		}
		c.printf("Updated %q\n", post.Title)
		return nil

	case "delete":
		if len(rest) == 0 {
			return errUsage
		}
		user, err := c.requireUser(ctx)
		if err != nil {
			return err
		}
		if !c.rt.Posts.DeletePostAs(ctx, user.ID, rest[0]) {
			return fmt.Errorf("could not delete post %s", rest[0])
		}
		c.printf("Deleted %s\n", rest[0])
		return nil

	case "show":
		if len(rest) == 0 {
			return errUsage
		}
		post, err := c.resolvePost(ctx, rest[0])
		if err != nil {
			return err
		}
		c.showPost(ctx, post)
		return nil

	default:
		return fmt.Errorf("unknown post command: %s", sub)
	}
}

func (c *cli) browse(ctx context.Context, raw string) error {
	d := route.Parse(raw)
	target := route.Classify(d)

	switch target.Kind {
	case route.KindPost:
		post := c.rt.Posts.GetPostBySlug(ctx, target.Param)
		if post == nil {
			return models.NewNotFoundError("Post", target.Param)
		}
		c.showPost(ctx, post)
	case route.KindEdit:
		user, err := c.requireUser(ctx)
		if err != nil {
			return err
		}
		post := c.rt.Posts.GetPostByID(ctx, target.Param)
		if post == nil {
			return models.NewNotFoundError("Post", target.Param)
		}
		if !service.Authorize(user.ID, post.Author.ID) {
			return models.NewAuthError("Not allowed to edit this post")
		}
		c.printf("Editing %q. Run: devblog post edit %s --title ... --content ...\n", post.Title, post.ID)
	case route.KindCreate:
		if _, err := c.requireUser(ctx); err != nil {
			return err
		}
		c.printf("Run: devblog post create --title ... --content ... [--publish]\n")
	case route.KindManage:
		return c.manage(ctx)
	case route.KindProfile:
		return c.profile(ctx)
	case route.KindAuth:
		c.printf("Run: devblog login --email ... --password ...  or  devblog signup --name ... --email ... --password ...\n")
	default:
		c.home(ctx, query.FromParams(d.Query))
	}
	return nil
}

func (c *cli) home(ctx context.Context, desc query.Description) {
	if cats := c.rt.Posts.Categories(ctx); len(cats) > 0 {
		c.printf("Categories: %s\n\n", strings.Join(cats, ", "))
	}

	res := query.Run(c.rt.Posts.GetPublishedPosts(ctx), desc)
	if len(res.Items) == 0 {
		c.printf("No posts found.\n")
	}
	for _, p := range res.Items {
		c.printSummary(&p)
	}

	c.printf("\nPage %d of %d (%d posts)\n", res.Page, res.TotalPages, res.Total)
	if res.Page > 1 {
		c.printf("  prev: %s\n", route.Build("/home", desc.WithPage(res.Page-1).Params()))
	}
	if res.Page < res.TotalPages {
		c.printf("  next: %s\n", route.Build("/home", desc.WithPage(res.Page+1).Params()))
	}
}

func (c *cli) manage(ctx context.Context) error {
	user, err := c.requireUser(ctx)
	if err != nil {
		return err
	}
	posts := c.rt.Posts.GetPostsByAuthor(ctx, user.ID)
	if len(posts) == 0 {
		c.printf("You have not written any posts yet.\n")
		return nil
	}
	for _, p := range posts {
		state := "draft"
		if p.Published {
			state = "published"
		}
		c.printf("%s  %-9s  %s  (#/edit/%s)\n", p.ID, state, p.Title, p.ID)
	}
	return nil
}

func (c *cli) profile(ctx context.Context) error {
	user, err := c.requireUser(ctx)
	if err != nil {
		return err
	}
	c.printf("%s <%s>, member since %s\n\n", user.Name, user.Email, user.CreatedAt.Format("2006-01-02"))

	posts := c.rt.Posts.GetBookmarkedPosts(ctx, user.ID)
	if len(posts) == 0 {
		c.printf("No bookmarks yet.\n")
		return nil
	}
	c.printf("Bookmarks:\n")
	for _, p := range posts {
		c.printSummary(&p)
	}
	return nil
}

func (c *cli) like(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	post, err := c.resolvePost(ctx, args[0])
	if err != nil {
		return err
	}
	res, err := c.rt.Posts.ToggleLike(ctx, post.ID)
	if err != nil {
		return err
	}
	verb := "Unliked"
	if res.Liked {
		verb = "Liked"
	}
	c.printf("%s %q (%d likes)\n", verb, post.Title, res.Likes)
	return nil
}

func (c *cli) bookmark(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	post, err := c.resolvePost(ctx, args[0])
	if err != nil {
		return err
	}
	var userID string
	if user := c.rt.Auth.GetCurrentUser(ctx); user != nil {
		userID = user.ID
	}
	res, err := c.rt.Posts.ToggleBookmark(ctx, post.ID, userID)
	if err != nil {
		return err
	}
	if res.Bookmarked {
		c.printf("Bookmarked %q\n", post.Title)
	} else {
		c.printf("Removed bookmark on %q\n", post.Title)
	}
	return nil
}

func (c *cli) comment(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errUsage
	}
	sub := args[0]
	post, err := c.resolvePost(ctx, args[1])
	if err != nil {
		return err
	}
	user := c.rt.Auth.GetCurrentUser(ctx)

	switch sub {
	case "add":
		fs := flag.NewFlagSet("comment add", flag.ContinueOnError)
		name := fs.String("name", "", "Display name for anonymous comments")
		text := fs.String("content", "", "Comment text")
		if err := fs.Parse(args[2:]); err != nil {
			return errUsage
		}

		in := service.CommentInput{AuthorName: *name, Content: *text}
		if user != nil {
			id := user.ID
			in.AuthorID = &id
			if in.AuthorName == "" {
				in.AuthorName = user.Name
			}
		}
		comment, err := c.rt.Posts.AddComment(ctx, post.ID, in)
		if err != nil {
			return err
		}
		c.printf("Comment added (%s)\n", comment.ID)
		return nil

	case "delete":
		if len(args) < 3 {
			return errUsage
		}
		var requester string
		if user != nil {
			requester = user.ID
		}
		if !c.rt.Posts.DeleteComment(ctx, post.ID, args[2], requester) {
			return errors.New("comment could not be deleted")
		}
		c.printf("Comment deleted\n")
		return nil

	default:
		return fmt.Errorf("unknown comment command: %s", sub)
	}
}

func (c *cli) seed(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("seed", flag.ContinueOnError)
	numUsers := fs.Int("users", 5, "Number of users to create")
	numPosts := fs.Int("posts", 30, "Number of posts to create")
	seedValue := fs.Int64("seed", 0, "Random seed (0 picks one)")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	f := seed.NewFactory(*seedValue, c.rt.Clock)
	if err := seed.Bulk(ctx, c.rt.Store, f, *numUsers, *numPosts); err != nil {
		return err
	}
	c.printf("Added %d users and %d posts. Generated users have the password: %s\n", *numUsers, *numPosts, seed.DefaultPassword)
	return nil
}

func (c *cli) metrics() error {
	families, err := prometheus.DefaultGatherer.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), bootstrap.ServiceName+"_") {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(c.out, mf); err != nil {
			return err
		}
	}
	return nil
}

func (c *cli) serve(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	addr := fs.String("addr", c.rt.Config.HTTPAddr, "Listen address")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	srv := server.New(c.rt.Posts, server.Options{
		ServiceName:    bootstrap.ServiceName,
		Version:        version,
		AllowedOrigins: c.rt.Config.AllowedOrigins,
	})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Listen(*addr) }()
	c.printf("Serving read-only API on %s\n", *addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
