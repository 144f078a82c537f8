package catalog

import (
	"strings"
	"testing"
	"testing/fstest"
)

func catalogFS(files map[string]string) fstest.MapFS {
	out := fstest.MapFS{}
	for name, content := range files {
		out[name] = &fstest.MapFile{Data: []byte(content)}
	}
	return out
}

func TestDefaultBundleLocales(t *testing.T) {
	got := Default().Locales()
	want := []string{"en-US", "pt-BR"}
	if len(got) != len(want) {
		t.Fatalf("locales = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("locales = %v, want %v", got, want)
		}
	}
}

func TestLoadValidatesCatalogFiles(t *testing.T) {
	valid := `locale: "en-US"
namespace: "scheduler"
messages:
  "a.key": "a"
`
	tests := []struct {
		name    string
		files   map[string]string
		wantErr string
	}{
		{
			name:  "valid",
			files: map[string]string{"locales/en-US/scheduler.yaml": valid},
		},
		{
			name:    "no files",
			files:   map[string]string{},
			wantErr: "no catalog files",
		},
		{
			name: "locale mismatch",
			files: map[string]string{
				"locales/pt-BR/scheduler.yaml": valid,
			},
			wantErr: "must match path locale",
		},
		{
			name: "namespace mismatch",
			files: map[string]string{
				"locales/en-US/report.yaml": valid,
			},
			wantErr: "must match filename",
		},
		{
			name: "duplicate key across namespaces",
			files: map[string]string{
				"locales/en-US/scheduler.yaml": valid,
				"locales/en-US/web.yaml": `locale: "en-US"
namespace: "web"
messages:
  "a.key": "b"
`,
			},
			wantErr: "duplicate key",
		},
		{
			name: "blank key",
			files: map[string]string{
				"locales/en-US/scheduler.yaml": `locale: "en-US"
namespace: "scheduler"
messages:
  "  ": "a"
`,
			},
			wantErr: "cannot be blank",
		},
		{
			name: "missing base locale",
			files: map[string]string{
				"locales/pt-BR/scheduler.yaml": `locale: "pt-BR"
namespace: "scheduler"
messages:
  "a.key": "a"
`,
			},
			wantErr: "base locale",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(catalogFS(tc.files))
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("load: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want %q", err, tc.wantErr)
			}
		})
	}
}

func TestPrinterFallsBackToBaseLocale(t *testing.T) {
	printer := Default().Printer("fr-FR")
	if got := printer.Sprintf("scheduler.report.status"); got != "Status" {
		t.Fatalf("expected base-locale label, got %q", got)
	}
}

func TestPrinterResolvesRegisteredLocale(t *testing.T) {
	printer := Default().Printer("pt-BR")
	if got := printer.Sprintf("scheduler.report.status"); got != "Situação" {
		t.Fatalf("expected pt-BR label, got %q", got)
	}
}
