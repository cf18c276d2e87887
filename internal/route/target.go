package route

// Kind names the view a route resolves to.
type Kind string

const (
	KindHome    Kind = "home"
	KindAuth    Kind = "auth"
	KindCreate  Kind = "create"
	KindEdit    Kind = "edit"
	KindManage  Kind = "manage"
	KindPost    Kind = "post"
	KindProfile Kind = "profile"
)

// Target is the resolved view plus its path parameter: the post ID for
// KindEdit and the slug for KindPost.
type Target struct {
	Kind  Kind
	Param string
}

// Classify resolves d against the route table. Anything unrecognised falls
// back to the home view.
func Classify(d Descriptor) Target {
	switch d.Path {
	case "/", "/home":
		return Target{Kind: KindHome}
	case "/auth":
		return Target{Kind: KindAuth}
	case "/create":
		return Target{Kind: KindCreate}
	case "/manage":
		return Target{Kind: KindManage}
	}

	if len(d.Segments) >= 2 {
		switch d.Segments[0] {
		case "edit":
			return Target{Kind: KindEdit, Param: d.Segments[1]}
		case "post":
			return Target{Kind: KindPost, Param: d.Segments[1]}
		}
	}

	if d.Path == "/profile" {
		return Target{Kind: KindProfile}
	}
	return Target{Kind: KindHome}
}
