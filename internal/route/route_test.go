package route

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Descriptor
	}{
		{"empty", "", Descriptor{Path: "/", Segments: []string{}, Query: map[string]string{}}},
		{"hash only", "#", Descriptor{Path: "/", Segments: []string{}, Query: map[string]string{}}},
		{"root", "#/", Descriptor{Path: "/", Segments: []string{}, Query: map[string]string{}}},
		{"home", "#/home", Descriptor{Path: "/home", Segments: []string{"home"}, Query: map[string]string{}}},
		{"no hash", "/post/hello-world", Descriptor{Path: "/post/hello-world", Segments: []string{"post", "hello-world"}, Query: map[string]string{}}},
		{"leading slashes", "#///edit/post-1", Descriptor{Path: "/edit/post-1", Segments: []string{"edit", "post-1"}, Query: map[string]string{}}},
		{"inner empty segments", "#/post//x/", Descriptor{Path: "/post//x/", Segments: []string{"post", "x"}, Query: map[string]string{}}},
		{
			"query",
			"#/home?search=css%20grid&cat=CSS&page=2",
			Descriptor{Path: "/home", Segments: []string{"home"}, Query: map[string]string{"search": "css grid", "cat": "CSS", "page": "2"}},
		},
		{
			"query without path",
			"?tags=a%2Cb",
			Descriptor{Path: "/", Segments: []string{}, Query: map[string]string{"tags": "a,b"}},
		},
		{
			"duplicates overwrite",
			"#/home?page=1&page=3",
			Descriptor{Path: "/home", Segments: []string{"home"}, Query: map[string]string{"page": "3"}},
		},
		{
			"empty key skipped and missing value",
			"#/home?=x&flag&&sort=",
			Descriptor{Path: "/home", Segments: []string{"home"}, Query: map[string]string{"flag": "", "sort": ""}},
		},
		{
			"value keeps later equals and question marks",
			"#/home?next=a=b?c",
			Descriptor{Path: "/home", Segments: []string{"home"}, Query: map[string]string{"next": "a=b?c"}},
		},
		{
			"plus is literal",
			"#/home?search=c++",
			Descriptor{Path: "/home", Segments: []string{"home"}, Query: map[string]string{"search": "c++"}},
		},
		{
			"undecodable kept verbatim",
			"#/home?search=100%&utm_%zz=1",
			Descriptor{Path: "/home", Segments: []string{"home"}, Query: map[string]string{"search": "100%", "utm_%zz": "1"}},
		},
		{
			"encoded key",
			"#/home?my%20key=v",
			Descriptor{Path: "/home", Segments: []string{"home"}, Query: map[string]string{"my key": "v"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.raw))
		})
	}
}

func TestDescriptor_StringRoundTrip(t *testing.T) {
	routes := []string{
		"#/",
		"#/home?cat=CSS&page=2&search=css%20grid",
		"#/post/hello-world",
		"#/home?search=a%26b%3Dc&tags=x%2Cy&utm=%F0%9F%98%80",
		"#/home?q=c%2B%2B",
	}
	for _, raw := range routes {
		d := Parse(raw)
		assert.Equal(t, raw, d.String())
		assert.Equal(t, d, Parse(d.String()))
	}

	assert.Equal(t, "#/home?a=1&b=2", Parse("#/home?b=2&a=1").String())
	assert.Equal(t, "#/", Descriptor{}.String())
}

func TestBuild(t *testing.T) {
	d := Build("/home", map[string]string{"search": "go tips", "cat": "", "page": "2"})
	assert.Equal(t, "#/home?page=2&search=go%20tips", d.String())
	assert.Equal(t, []string{"home"}, d.Segments)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		raw  string
		want Target
	}{
		{"", Target{Kind: KindHome}},
		{"#/", Target{Kind: KindHome}},
		{"#/home?page=2", Target{Kind: KindHome}},
		{"#/auth", Target{Kind: KindAuth}},
		{"#/create", Target{Kind: KindCreate}},
		{"#/manage", Target{Kind: KindManage}},
		{"#/profile", Target{Kind: KindProfile}},
		{"#/edit/post-123", Target{Kind: KindEdit, Param: "post-123"}},
		{"#/post/hello-world", Target{Kind: KindPost, Param: "hello-world"}},
		{"#/post/hello-world/extra", Target{Kind: KindPost, Param: "hello-world"}},
		{"#/post", Target{Kind: KindHome}},
		{"#/edit/", Target{Kind: KindHome}},
		{"#/auth/extra", Target{Kind: KindHome}},
		{"#/nowhere", Target{Kind: KindHome}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(Parse(tt.raw)))
		})
	}
}
