package maven

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/mavcrawl/pkg/artifact"
	"github.com/matzehuels/mavcrawl/pkg/httputil"
	"github.com/matzehuels/mavcrawl/pkg/integrations"
)

const centralVersionDir = `<html><body><h1>com/example/lib/1.2.0</h1><hr/><pre>
<a href="../">../</a>
<a href="lib-1.2.0.jar" title="lib-1.2.0.jar">lib-1.2.0.jar</a>                                     2023-10-12 20:52     31130
<a href="lib-1.2.0.jar.sha1" title="lib-1.2.0.jar.sha1">lib-1.2.0.jar.sha1</a>                          2023-10-12 20:52        40
<a href="lib-1.2.0.pom" title="lib-1.2.0.pom">lib-1.2.0.pom</a>                                     2023-10-12 20:50      1024
</pre><hr/></body></html>`

const clouderaVersionDir = `<html><body><table>
<tr><th>Name</th><th>Last Modified</th><th>Size</th></tr>
<tr><td><a href="../">Parent Directory</a></td><td></td><td></td></tr>
<tr><td><a href="https://example/lib-1.2.0.jar">lib-1.2.0.jar</a></td><td>Tue Jan 30 19:41:11 UTC 2024</td><td>5567</td></tr>
<tr><td><a href="https://example/lib-1.2.0.pom">lib-1.2.0.pom</a></td><td>Tue Jan 30 19:41:10 UTC 2024</td><td>900</td></tr>
</table></body></html>`

const groupDir = `<html><body><pre>
<a href="../">../</a>
<a href="core/" title="core/">core/</a>      -         -
<a href="extras/" title="extras/">extras/</a>    -         -
<a href="core/">core/</a>
<a href="https://elsewhere.example/">elsewhere</a>
<a href="maven-metadata.xml">maven-metadata.xml</a>
</pre></body></html>`

func newTestClient(t *testing.T, repo Repository, h http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	repo.BaseURL = srv.URL + "/maven2/"
	if repo.BrowseURL != "" {
		repo.BrowseURL = srv.URL + "/browse/"
	}
	if repo.SearchURL != "" {
		repo.SearchURL = srv.URL + "/solrsearch/select"
	}
	if repo.IndexURL != "" {
		repo.IndexURL = srv.URL + "/master-index.xml"
	}
	c := NewClient(repo, Options{Throttle: httputil.NewThrottle(0)})
	c.SetHTTPClient(srv.Client())
	return c, srv
}

func TestClientList(t *testing.T) {
	c, srv := newTestClient(t, Repository{Name: "t"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/maven2/com/example/" {
			w.Write([]byte(groupDir))
			return
		}
		http.NotFound(w, r)
	}))

	got, err := c.List(context.Background(), srv.URL+"/maven2/com/example")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{
		srv.URL + "/maven2/com/example/core/",
		srv.URL + "/maven2/com/example/extras/",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}
}

func TestClientListNonSuccessIsEmpty(t *testing.T) {
	c, srv := newTestClient(t, Repository{Name: "t"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	got, err := c.List(context.Background(), srv.URL+"/maven2/x/")
	if err == nil {
		t.Error("expected an error for logging")
	}
	if got == nil || len(got) != 0 {
		t.Errorf("List = %#v, want empty non-nil slice", got)
	}
}

func TestClientFetchPOM(t *testing.T) {
	c, _ := newTestClient(t, Repository{Name: "t"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/maven2/com/example/lib/1.2.0/lib-1.2.0.pom" {
			w.Write([]byte("<project/>"))
			return
		}
		http.NotFound(w, r)
	}))
	ctx := context.Background()

	data, err := c.FetchPOM(ctx, artifact.MustParse("com.example:lib:1.2.0"))
	if err != nil || string(data) != "<project/>" {
		t.Fatalf("FetchPOM = (%q, %v)", data, err)
	}
	_, err = c.FetchPOM(ctx, artifact.MustParse("com.example:lib:9.9"))
	if !integrations.IsNotFound(err) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestClientFileInfoPre(t *testing.T) {
	c, _ := newTestClient(t, Repository{Name: "t"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(centralVersionDir))
	}))
	info, err := c.FileInfo(context.Background(), artifact.MustParse("com.example:lib:1.2.0"))
	if err != nil {
		t.Fatalf("FileInfo: %v", err)
	}
	if info.Size != "31130" {
		t.Errorf("Size = %q, want 31130", info.Size)
	}
	want := time.Date(2023, 10, 12, 20, 52, 0, 0, time.UTC)
	if info.LastModified == nil || !info.LastModified.Equal(want) {
		t.Errorf("LastModified = %v, want %v", info.LastModified, want)
	}
}

func TestClientFileInfoTable(t *testing.T) {
	c, _ := newTestClient(t, Repository{Name: "t", BrowseURL: "set"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/browse/") {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(clouderaVersionDir))
	}))
	info, err := c.FileInfo(context.Background(), artifact.MustParse("com.example:lib:1.2.0"))
	if err != nil {
		t.Fatalf("FileInfo: %v", err)
	}
	if info.Size != "5567" {
		t.Errorf("Size = %q, want 5567", info.Size)
	}
	if info.LastModified == nil || info.LastModified.Format("2006-01-02 15:04") != "2024-01-30 19:41" {
		t.Errorf("LastModified = %v", info.LastModified)
	}
}

func TestClientFileInfoNoJar(t *testing.T) {
	c, _ := newTestClient(t, Repository{Name: "t"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(centralVersionDir))
	}))
	info, err := c.FileInfo(context.Background(), artifact.MustParse("com.example:other:1.2.0"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Size != "" {
		t.Errorf("Size = %q, want empty", info.Size)
	}
	if info.LastModified == nil {
		t.Error("LastModified should fall back to the first dated row")
	}
}

func TestClientFileInfoHead(t *testing.T) {
	c, _ := newTestClient(t, Repository{Name: "t", FileInfo: FileInfoHead}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodHead || !strings.HasSuffix(r.URL.Path, ".jar") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Last-Modified", "Mon, 02 Jan 2006 15:04:05 GMT")
		w.Header().Set("Content-Length", "4096")
	}))
	info, err := c.FileInfo(context.Background(), artifact.MustParse("androidx.core:core:1.0.0"))
	if err != nil {
		t.Fatalf("FileInfo: %v", err)
	}
	if info.Size != "4096" {
		t.Errorf("Size = %q, want 4096", info.Size)
	}
	if info.LastModified == nil || info.LastModified.Year() != 2006 {
		t.Errorf("LastModified = %v", info.LastModified)
	}
}

func TestClientSearch(t *testing.T) {
	c, _ := newTestClient(t, Repository{Name: "t", SearchURL: "set"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start") != "100" || r.URL.Query().Get("rows") != "100" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		resp := searchResponse{}
		resp.Response.NumFound = 250
		resp.Response.Docs = []searchDoc{
			{GroupID: "org.example", ArtifactID: "a", LatestVersion: "1.0.0"},
			{GroupID: "org.example", ArtifactID: "b", Version: "2.0"},
			{GroupID: "org.example", ArtifactID: "bad"},
		}
		json.NewEncoder(w).Encode(resp)
	}))

	page, err := c.Search(context.Background(), 100, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	want := []artifact.Coordinate{
		artifact.MustParse("org.example:a:1.0.0"),
		artifact.MustParse("org.example:b:2.0"),
	}
	if diff := cmp.Diff(want, page.Coordinates); diff != "" {
		t.Errorf("Search mismatch (-want +got):\n%s", diff)
	}
	if page.NumFound != 250 {
		t.Errorf("NumFound = %d", page.NumFound)
	}
}

func TestClientSearchUnsupported(t *testing.T) {
	c := NewClient(Repository{Name: "x", BaseURL: "https://example.com/"}, Options{})
	if _, err := c.Search(context.Background(), 0, 10); err == nil {
		t.Error("expected error without search endpoint")
	}
}

func TestClientGoogleIndex(t *testing.T) {
	c, _ := newTestClient(t, Repository{Name: "t", IndexURL: "set"}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/master-index.xml":
			w.Write([]byte(`<?xml version='1.0' encoding='UTF-8'?>
<metadata>
  <androidx.activity/>
  <com.android.tools/>
</metadata>`))
		case "/androidx/activity/group-index.xml":
			w.Write([]byte(`<?xml version='1.0' encoding='UTF-8'?>
<androidx.activity>
  <activity versions="1.0.0,1.1.0, 1.2.0"/>
  <activity-ktx versions="1.0.0"/>
</androidx.activity>`))
		default:
			http.NotFound(w, r)
		}
	}))
	ctx := context.Background()

	groups, err := c.Groups(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"androidx.activity", "com.android.tools"}, groups); diff != "" {
		t.Errorf("Groups mismatch (-want +got):\n%s", diff)
	}

	entries, err := c.GroupIndex(ctx, "androidx.activity")
	if err != nil {
		t.Fatal(err)
	}
	want := []IndexEntry{
		{Group: "androidx.activity", Artifact: "activity", Versions: []string{"1.0.0", "1.1.0", "1.2.0"}},
		{Group: "androidx.activity", Artifact: "activity-ktx", Versions: []string{"1.0.0"}},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Errorf("GroupIndex mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeTimestamp(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Tue Jan 30 19:41:11 UTC 2024", "2024-01-30 19:41"},
		{"2023-10-12 20:52", "2023-10-12 20:52"},
		{"not a date", "not a date"},
	}
	for _, tt := range tests {
		if got := NormalizeTimestamp(tt.in); got != tt.want {
			t.Errorf("NormalizeTimestamp(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDirName(t *testing.T) {
	tests := []struct{ in, want string }{
		{"https://repo/maven2/com/example/1.0%2Bbuild/", "1.0+build"},
		{"https://repo/maven2/com/example/", "example"},
	}
	for _, tt := range tests {
		if got := DirName(tt.in); got != tt.want {
			t.Errorf("DirName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestPreset(t *testing.T) {
	for _, name := range PresetNames() {
		repo, ok := Preset(name)
		if !ok {
			t.Fatalf("Preset(%q) missing", name)
		}
		if err := repo.WithDefaults().Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
	if _, ok := Preset("nope"); ok {
		t.Error("unknown preset found")
	}
}

func TestRepositoryURLs(t *testing.T) {
	repo := Cloudera.WithDefaults()
	c := artifact.MustParse("org.apache.hadoop:hadoop-common:3.1.1")
	if got := repo.POMURL(c); got != "https://repository.cloudera.com/repository/public/org/apache/hadoop/hadoop-common/3.1.1/hadoop-common-3.1.1.pom" {
		t.Errorf("POMURL = %s", got)
	}
	if got := repo.DirectoryURL(c); got != "https://repository.cloudera.com/service/rest/repository/browse/public/org/apache/hadoop/hadoop-common/3.1.1/" {
		t.Errorf("DirectoryURL = %s", got)
	}
}
