package convert

import (
	"encoding/json"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hashicorp-forge/syncman/internal/cmd/base"
)

const petsSpec = `openapi: 3.0.3
info:
  title: Pets
  version: 1.0.0
servers:
  - url: https://pets.example.com
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: ok
  /pets/{id}:
    delete:
      tags: [admin]
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: integer
      responses:
        "204":
          description: deleted
`

func newTestCommand(fs afero.Fs) (*Command, *cli.MockUi) {
	ui := cli.NewMockUi()
	return &Command{
		Command: &base.Command{UI: ui, Log: hclog.NewNullLogger()},
		fs:      fs,
	}, ui
}

func testFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "pets.yaml", []byte(petsSpec), 0o644))
	return fs
}

func TestRun_Stdout(t *testing.T) {
	c, ui := newTestCommand(testFs(t))

	code := c.Run([]string{"-location", "pets.yaml"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())

	var col map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(ui.OutputWriter.String()), &col))

	info := col["info"].(map[string]interface{})
	assert.Equal(t, "Pets", info["name"])
	assert.Equal(t, "https://schema.getpostman.com/json/collection/v2.1.0/collection.json", info["schema"])
	assert.Len(t, col["item"], 2)
}

func TestRun_OutputFileAndName(t *testing.T) {
	fs := testFs(t)
	require.NoError(t, afero.WriteFile(fs, "syncman.hcl", []byte(`
conversion {
  folder_strategy = "Paths"
}
`), 0o644))
	c, ui := newTestCommand(fs)

	code := c.Run([]string{"-l", "pets.yaml", "-o", "out.json", "-config", "syncman.hcl", "-name", "Pets [Generated]"})
	require.Equal(t, 0, code, ui.ErrorWriter.String())
	assert.Contains(t, ui.OutputWriter.String(), "Wrote 2 requests to out.json")

	data, err := afero.ReadFile(fs, "out.json")
	require.NoError(t, err)

	var col struct {
		Info struct {
			Name string `json:"name"`
		} `json:"info"`
		Item []struct {
			Name string `json:"name"`
		} `json:"item"`
	}
	require.NoError(t, json.Unmarshal(data, &col))
	assert.Equal(t, "Pets [Generated]", col.Info.Name)
	require.Len(t, col.Item, 1)
	assert.Equal(t, "pets", col.Item[0].Name)
}

func TestRun_Failures(t *testing.T) {
	fs := testFs(t)
	require.NoError(t, afero.WriteFile(fs, "notes.txt", []byte("just: text\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "bad.hcl", []byte(`conversion { folder_strategy = "Random" }`), 0o644))

	tests := []struct {
		name string
		args []string
		code int
		err  string
	}{
		{"no location", []string{}, 1, `"location" option was not set`},
		{"missing file", []string{"-location", "missing.yaml"}, 2, "No valid OAS file"},
		{"bad options", []string{"-location", "pets.yaml", "-config", "bad.hcl"}, 2, "unknown folder strategy"},
		{"not convertible", []string{"-location", "notes.txt"}, 1, "Could not convert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ui := newTestCommand(fs)
			assert.Equal(t, tt.code, c.Run(tt.args))
			assert.Contains(t, ui.ErrorWriter.String(), tt.err)
		})
	}
}
