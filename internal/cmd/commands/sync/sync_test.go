package sync

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	stdsync "sync"
	"testing"

	"github.com/fatih/color"
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/syncman/internal/cmd/base"
)

const ordersSpec = `openapi: 3.0.3
info:
  title: Orders
  version: 1.0.0
paths:
  /orders:
    get:
      tags: [orders]
      summary: List orders
      responses:
        "200":
          description: ok
          content:
            application/json:
              schema:
                type: array
                items:
                  type: object
                  properties:
                    id:
                      type: string
                      format: uuid
`

// fakePostman is an in-memory Postman API.
type fakePostman struct {
	mu stdsync.Mutex

	workspaceID string
	apis        map[string]string   // id -> name
	versions    map[string][]string // api id -> version ids
	versionName map[string]string   // version id -> name
	schemas     map[string][]string // version id -> schema ids
	docs        map[string]string   // version id -> collection id
	contents    map[string]string   // schema id -> content
	collections map[string]map[string]interface{}

	calls map[string]int
	seq   int
}

func newFakePostman() *fakePostman {
	return &fakePostman{
		workspaceID: "ws-1",
		apis:        map[string]string{},
		versions:    map[string][]string{},
		versionName: map[string]string{},
		schemas:     map[string][]string{},
		docs:        map[string]string{},
		contents:    map[string]string{},
		collections: map[string]map[string]interface{}{},
		calls:       map[string]int{},
	}
}

func (f *fakePostman) nextID(prefix string) string {
	f.seq++
	return fmt.Sprintf("%s-%d", prefix, f.seq)
}

func (f *fakePostman) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakePostman) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	reply := func(w http.ResponseWriter, status int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		assert.NoError(t, json.NewEncoder(w).Encode(v))
	}
	notFound := func(w http.ResponseWriter) {
		reply(w, http.StatusNotFound, map[string]interface{}{
			"error": map[string]string{"name": "instanceNotFoundError", "message": "not found"},
		})
	}
	record := func(name string, h func(w http.ResponseWriter, r *http.Request)) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "PMAK-test", r.Header.Get("X-Api-Key"))
			f.mu.Lock()
			defer f.mu.Unlock()
			f.calls[name]++
			h(w, r)
		}
	}

	mux.HandleFunc("GET /workspaces/{id}", record("getWorkspace", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != f.workspaceID {
			notFound(w)
			return
		}
		reply(w, http.StatusOK, map[string]interface{}{
			"workspace": map[string]string{"id": f.workspaceID, "name": "Team"},
		})
	}))

	mux.HandleFunc("GET /apis", record("listAPIs", func(w http.ResponseWriter, r *http.Request) {
		apis := []map[string]string{}
		for id, name := range f.apis {
			apis = append(apis, map[string]string{"id": id, "name": name})
		}
		reply(w, http.StatusOK, map[string]interface{}{"apis": apis})
	}))

	mux.HandleFunc("POST /apis", record("createAPI", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, f.workspaceID, r.URL.Query().Get("workspace"))
		var body struct {
			API struct {
				Name string `json:"name"`
			} `json:"api"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		id := f.nextID("api")
		f.apis[id] = body.API.Name
		reply(w, http.StatusOK, map[string]interface{}{"api": map[string]string{"id": id, "name": body.API.Name}})
	}))

	mux.HandleFunc("GET /apis/{api}/versions", record("listVersions", func(w http.ResponseWriter, r *http.Request) {
		versions := []map[string]string{}
		for _, id := range f.versions[r.PathValue("api")] {
			versions = append(versions, map[string]string{"id": id, "name": f.versionName[id]})
		}
		reply(w, http.StatusOK, map[string]interface{}{"versions": versions})
	}))

	mux.HandleFunc("POST /apis/{api}/versions", record("createVersion", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Version struct {
				Name string `json:"name"`
			} `json:"version"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		id := f.nextID("ver")
		api := r.PathValue("api")
		f.versions[api] = append(f.versions[api], id)
		f.versionName[id] = body.Version.Name
		reply(w, http.StatusOK, map[string]interface{}{"version": map[string]string{"id": id, "name": body.Version.Name}})
	}))

	mux.HandleFunc("GET /apis/{api}/versions/{version}", record("getVersion", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("version")
		name, ok := f.versionName[id]
		if !ok {
			notFound(w)
			return
		}
		reply(w, http.StatusOK, map[string]interface{}{"version": map[string]interface{}{
			"id":        id,
			"name":      name,
			"schema":    f.schemas[id],
			"updatedAt": "2024-03-01T10:00:00.000Z",
		}})
	}))

	mux.HandleFunc("POST /apis/{api}/versions/{version}/schemas", record("createSchema", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Schema struct {
				Language string `json:"language"`
				Schema   string `json:"schema"`
				Type     string `json:"type"`
			} `json:"schema"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "yaml", body.Schema.Language)
		assert.Equal(t, "openapi3", body.Schema.Type)

		id := f.nextID("sch")
		f.contents[id] = body.Schema.Schema
		version := r.PathValue("version")
		f.schemas[version] = append(f.schemas[version], id)
		reply(w, http.StatusOK, map[string]interface{}{"schema": map[string]string{"id": id}})
	}))

	mux.HandleFunc("PUT /apis/{api}/versions/{version}/schemas/{schema}", record("updateSchema", func(w http.ResponseWriter, r *http.Request) {
		reply(w, http.StatusOK, map[string]interface{}{"schema": map[string]string{"id": r.PathValue("schema")}})
	}))

	mux.HandleFunc("POST /apis/{api}/versions/{version}/schemas/{schema}/collections", record("createCollection", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Name string `json:"name"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		id := f.nextID("col")
		f.docs[r.PathValue("version")] = id
		f.collections[id] = map[string]interface{}{"info": map[string]interface{}{"name": body.Name}}
		reply(w, http.StatusOK, map[string]interface{}{
			"collection": map[string]string{"id": id},
			"relations":  []map[string]string{{"type": "documentation", "id": f.nextID("rel")}},
		})
	}))

	mux.HandleFunc("GET /apis/{api}/versions/{version}/documentation", record("getDocumentation", func(w http.ResponseWriter, r *http.Request) {
		docs := []map[string]string{}
		if id, ok := f.docs[r.PathValue("version")]; ok {
			docs = append(docs, map[string]string{"id": "rel-1", "collectionId": id})
		}
		reply(w, http.StatusOK, map[string]interface{}{"documentation": docs})
	}))

	mux.HandleFunc("PUT /collections/{id}", record("updateCollection", func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		if _, ok := f.collections[id]; !ok {
			notFound(w)
			return
		}
		var body struct {
			Collection map[string]interface{} `json:"collection"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		f.collections[id] = body.Collection
		reply(w, http.StatusOK, map[string]interface{}{"collection": map[string]string{"id": id}})
	}))

	return mux
}

type testEnv struct {
	fake   *fakePostman
	server *httptest.Server
	fs     afero.Fs
	env    map[string]string
	opened []string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	color.NoColor = true

	fake := newFakePostman()
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "openapi.yaml", []byte(ordersSpec), 0o644))
	require.NoError(t, afero.WriteFile(fs, "syncman.hcl", []byte(fmt.Sprintf(`
postman {
  base_url = %q
  timeout  = "5s"
}
`, server.URL)), 0o644))

	return &testEnv{
		fake:   fake,
		server: server,
		fs:     fs,
		env: map[string]string{
			"POSTMAN_API_KEY":      "PMAK-test",
			"POSTMAN_WORKSPACE_ID": "ws-1",
		},
	}
}

func (e *testEnv) run(args ...string) (int, *cli.MockUi) {
	ui := cli.NewMockUi()
	c := &Command{
		Command: &base.Command{
			UI:        ui,
			Log:       hclog.NewNullLogger(),
			LogOutput: io.Discard,
		},
		fs: e.fs,
		lookupEnv: func(key string) (string, bool) {
			v, ok := e.env[key]
			return v, ok
		},
		openURL: func(u string) error {
			e.opened = append(e.opened, u)
			return nil
		},
	}
	return c.Run(args), ui
}

func syncArgs(extra ...string) []string {
	return append([]string{
		"-config", "syncman.hcl",
		"-location", "openapi.yaml",
		"-apiname", "Orders",
		"-versionname", "v1",
	}, extra...)
}

func TestRun_NoArgs(t *testing.T) {
	code, ui := newTestEnv(t).run()
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.OutputWriter.String(), "Usage: syncman sync")
	assert.Contains(t, ui.ErrorWriter.String(), "no options were selected")
}

func TestRun_MissingRequiredOptions(t *testing.T) {
	e := newTestEnv(t)

	code, ui := e.run("-location", "openapi.yaml")
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), `"apiname" or "location" options were not set`)

	code, _ = e.run("-apiname", "Orders")
	assert.Equal(t, 1, code)

	assert.Zero(t, e.fake.count("getWorkspace"))
}

func TestRun_MissingSecrets(t *testing.T) {
	e := newTestEnv(t)
	e.env = map[string]string{}

	code, ui := e.run(syncArgs()...)
	assert.Equal(t, 2, code)
	assert.Contains(t, ui.ErrorWriter.String(), "POSTMAN_API_KEY environment variable was not set, aborting")
	assert.Contains(t, ui.ErrorWriter.String(), "POSTMAN_WORKSPACE_ID environment variable was not set, aborting")
	assert.Zero(t, e.fake.count("getWorkspace"))
}

func TestRun_SecretsFromDotEnv(t *testing.T) {
	e := newTestEnv(t)
	e.env = map[string]string{}
	require.NoError(t, afero.WriteFile(e.fs, "ci.env", []byte(
		"POSTMAN_API_KEY=PMAK-test\nPOSTMAN_WORKSPACE_ID=ws-1\n"), 0o644))

	code, ui := e.run(syncArgs("-dotenv", "ci.env")...)
	require.Equal(t, 0, code, ui.ErrorWriter.String())
}

func TestRun_UnreadableFile(t *testing.T) {
	e := newTestEnv(t)

	code, ui := e.run("-config", "syncman.hcl", "-location", "missing.yaml", "-apiname", "Orders")
	assert.Equal(t, 2, code)
	assert.Contains(t, ui.ErrorWriter.String(), `No valid OAS file located in "missing.yaml", aborting`)
	assert.Zero(t, e.fake.count("getWorkspace"))
}

func TestRun_WorkspaceNotFound(t *testing.T) {
	e := newTestEnv(t)
	e.env["POSTMAN_WORKSPACE_ID"] = "ws-unknown"

	code, ui := e.run(syncArgs()...)
	assert.Equal(t, 1, code)
	assert.Contains(t, ui.ErrorWriter.String(), "workspace does not exist")
	assert.Zero(t, e.fake.count("listAPIs"))
}

func TestRun_FirstAndSecondSync(t *testing.T) {
	e := newTestEnv(t)

	code, ui := e.run(syncArgs()...)
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Contains(t, ui.OutputWriter.String(), `Synced API "Orders" with version "v1" successfully`)

	assert.Equal(t, 1, e.fake.count("createAPI"))
	assert.Equal(t, 1, e.fake.count("createVersion"))
	assert.Equal(t, 1, e.fake.count("createSchema"))
	assert.Equal(t, 1, e.fake.count("createCollection"))
	assert.Equal(t, 1, e.fake.count("updateCollection"))
	assert.Zero(t, e.fake.count("updateSchema"))

	require.Len(t, e.fake.contents, 1)
	for _, content := range e.fake.contents {
		assert.Equal(t, ordersSpec, content)
	}
	require.Len(t, e.fake.apis, 1)
	for _, name := range e.fake.apis {
		assert.Equal(t, "Orders [Generated]", name)
	}
	require.Len(t, e.fake.collections, 1)
	for _, col := range e.fake.collections {
		info, ok := col["info"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Orders [Generated]", info["name"])
		assert.NotEmpty(t, col["item"])
	}

	code, ui = e.run(syncArgs()...)
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	assert.Equal(t, 1, e.fake.count("createAPI"))
	assert.Equal(t, 1, e.fake.count("createVersion"))
	assert.Equal(t, 1, e.fake.count("createSchema"))
	assert.Equal(t, 1, e.fake.count("createCollection"))
	assert.Equal(t, 1, e.fake.count("updateSchema"))
	assert.Equal(t, 2, e.fake.count("updateCollection"))
	assert.Len(t, e.fake.collections, 1)
}

func TestRun_ConversionFailureIsNotAnError(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, afero.WriteFile(e.fs, "notes.yaml", []byte("just: text\n"), 0o644))

	code, ui := e.run("-config", "syncman.hcl", "-location", "notes.yaml", "-apiname", "Notes")
	assert.Equal(t, 0, code)
	assert.Contains(t, ui.ErrorWriter.String(), "Could not convert, skipping collections update")
	assert.NotContains(t, ui.OutputWriter.String(), "successfully")
	assert.Zero(t, e.fake.count("updateCollection"))
}

func TestRun_CollectionNamedAfterAPI(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, afero.WriteFile(e.fs, "service.yaml",
		[]byte(strings.Replace(ordersSpec, "title: Orders", "title: Order Service", 1)), 0o644))

	code, ui := e.run("-config", "syncman.hcl", "-location", "service.yaml", "-apiname", "Orders")
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	require.Len(t, e.fake.collections, 1)
	for _, col := range e.fake.collections {
		info, ok := col["info"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, "Orders [Generated]", info["name"])
	}
}

func TestRun_EmptyFileIsSkipped(t *testing.T) {
	e := newTestEnv(t)
	require.NoError(t, afero.WriteFile(e.fs, "empty.yaml", nil, 0o644))

	code, ui := e.run("-config", "syncman.hcl", "-location", "empty.yaml", "-apiname", "Orders")
	assert.Equal(t, 0, code)
	assert.Contains(t, ui.ErrorWriter.String(), "Could not convert, skipping collections update")
	assert.Equal(t, 1, e.fake.count("getWorkspace"))
	assert.Zero(t, e.fake.count("updateCollection"))
}

func TestRun_Open(t *testing.T) {
	e := newTestEnv(t)

	code, ui := e.run(syncArgs("-open")...)
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	require.Len(t, e.opened, 1)
	assert.True(t, strings.HasPrefix(e.opened[0], "https://go.postman.co/workspace/ws-1/api/api-"))
}

func TestRun_ShortFlags(t *testing.T) {
	e := newTestEnv(t)

	code, ui := e.run("-config", "syncman.hcl", "-l", "openapi.yaml", "-a", "Orders", "-v", "v2")
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Contains(t, ui.OutputWriter.String(), `Synced API "Orders" with version "v2" successfully`)
}

func TestHelp(t *testing.T) {
	c := &Command{Command: &base.Command{UI: cli.NewMockUi(), Log: hclog.NewNullLogger()}}
	help := c.Help()

	assert.Contains(t, help, "-l, -location")
	assert.Contains(t, help, "-v, -versionname=Latest")
	assert.NotContains(t, help, "Alias of")
}
