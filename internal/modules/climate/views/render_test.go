package views

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"
)

func TestLoadTemplates_success(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v; want nil", err)
	}
	if indexTmpl == nil {
		t.Fatal("LoadTemplates() left indexTmpl nil")
	}
}

func TestLoadTemplates_failure_sub(t *testing.T) {
	// Empty FS has no templates; ParseFS finds no files.
	if err := loadTemplatesFromFS(fstest.MapFS{}, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(emptyFS) = nil; want error")
	}
}

func TestLoadTemplates_failure_parse(t *testing.T) {
	prev := indexTmpl
	t.Cleanup(func() { indexTmpl = prev })

	badFS := fstest.MapFS{
		"templates/index.html": {Data: []byte("{{ .")},
	}
	if err := loadTemplatesFromFS(badFS, "templates"); err == nil {
		t.Fatal("loadTemplatesFromFS(badFS) = nil; want error")
	}
}

func TestRenderIndex_notLoaded(t *testing.T) {
	prev := indexTmpl
	indexTmpl = nil
	t.Cleanup(func() { indexTmpl = prev })

	var buf bytes.Buffer
	err := RenderIndex(&buf, &IndexData{})
	if err == nil {
		t.Fatal("RenderIndex() = nil; want error when templates are not loaded")
	}
	if buf.Len() != 0 {
		t.Errorf("RenderIndex wrote %d bytes on error", buf.Len())
	}
}

func TestRenderIndex_listsRoutes(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v", err)
	}

	data := &IndexData{
		WindowStart: "2016-08-23",
		WindowEnd:   "2017-08-23",
		Routes: []RouteLink{
			{Path: "/api/v1.0/precipitation", Description: "precipitation by date"},
			{Path: "/api/v1.0/2016-08-23/2017-08-23", Description: "temperature stats"},
		},
	}
	var buf bytes.Buffer
	if err := RenderIndex(&buf, data); err != nil {
		t.Fatalf("RenderIndex() = %v", err)
	}

	body := buf.String()
	for _, want := range []string{
		`<a href="/api/v1.0/precipitation">/api/v1.0/precipitation</a>`,
		`<a href="/api/v1.0/2016-08-23/2017-08-23">`,
		"2016-08-23 to 2017-08-23",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %q:\n%s", want, body)
		}
	}
}

func TestRenderIndex_escapesDescription(t *testing.T) {
	if err := LoadTemplates(); err != nil {
		t.Fatalf("LoadTemplates() = %v", err)
	}

	var buf bytes.Buffer
	err := RenderIndex(&buf, &IndexData{Routes: []RouteLink{{Path: "/x", Description: "<script>"}}})
	if err != nil {
		t.Fatalf("RenderIndex() = %v", err)
	}
	if strings.Contains(buf.String(), "<script>") {
		t.Errorf("description was not escaped:\n%s", buf.String())
	}
}
