// SPDX-License-Identifier: MPL-2.0

package descriptor

import (
	"errors"
	"slices"
	"testing"
)

const sampleTOML = `
env_list = ["lint", "py311"]

[env_run_base]
deps = ["pytest>=7"]
pass_env = ["CI"]
set_env = { MPLBACKEND = "Agg", HOME_DIR = { replace = "env", name = "HOME", default = "/tmp" } }
commands = [["pytest", { replace = "posargs", default = ["tests", "-x"] }]]

[env.lint]
skip_install = true
deps = [{ replace = "ref", of = ["env_run_base", "deps"], extend = true }, "flake8"]
commands = [["flake8", "src dir"]]
`

func TestParseTOML(t *testing.T) {
	t.Parallel()

	d, err := ParseTOML("tox.toml", []byte(sampleTOML))
	if err != nil {
		t.Fatalf("ParseTOML() error: %v", err)
	}

	if got := d.EnvList(); !slices.Equal(got, []string{"lint", "py311"}) {
		t.Errorf("EnvList() = %v", got)
	}

	base, ok := d.Section(BaseSection)
	if !ok {
		t.Fatal("env_run_base not mapped to base section")
	}
	cmds, _ := base.Field(KeyCommands)
	if got, want := cmds.Strings(), []string{"pytest {posargs:tests -x}"}; !slices.Equal(got, want) {
		t.Errorf("commands = %q, want %q", got, want)
	}
	setenv, _ := base.Field(KeySetEnv)
	if got, want := setenv.Strings(), []string{"MPLBACKEND=Agg", "HOME_DIR={env:HOME:/tmp}"}; !slices.Equal(got, want) {
		t.Errorf("set_env = %q, want %q", got, want)
	}

	lint, ok := d.Section(EnvSectionName("lint"))
	if !ok {
		t.Fatal("env.lint not mapped to testenv:lint")
	}
	deps, _ := lint.Field(KeyDeps)
	ref, ok := deps[0].SoleReference()
	if !ok || ref.Section != BaseSection || ref.Key != KeyDeps {
		t.Errorf("first lint dep = %v, want reference to [testenv]deps", deps.Strings())
	}
	lintCmds, _ := lint.Field(KeyCommands)
	if got, want := lintCmds.Strings(), []string{"flake8 'src dir'"}; !slices.Equal(got, want) {
		t.Errorf("lint commands = %q, want %q", got, want)
	}
}

func TestParseTOML_DeclarationOrder(t *testing.T) {
	t.Parallel()

	src := `
[env.zeta]
commands = [["z"]]
deps = ["b", "a"]

[env.alpha]
set_env = { ZED = "1", ABC = "2" }

[env_run_base]
skip_install = true
`
	d, err := ParseTOML("tox.toml", []byte(src))
	if err != nil {
		t.Fatalf("ParseTOML() error: %v", err)
	}

	var names []string
	for _, s := range d.Sections() {
		names = append(names, s.Name())
	}
	want := []string{"testenv:zeta", "testenv:alpha", "testenv"}
	if !slices.Equal(names, want) {
		t.Errorf("sections = %q, want %q", names, want)
	}

	zeta, _ := d.Section(EnvSectionName("zeta"))
	if got := zeta.Keys(); !slices.Equal(got, []string{KeyCommands, KeyDeps}) {
		t.Errorf("zeta keys = %q, want commands before deps", got)
	}
	alpha, _ := d.Section(EnvSectionName("alpha"))
	setenv, _ := alpha.Field(KeySetEnv)
	if got, want := setenv.Strings(), []string{"ZED=1", "ABC=2"}; !slices.Equal(got, want) {
		t.Errorf("set_env = %q, want %q", got, want)
	}
}

func TestParseTOML_UnsupportedReplacement(t *testing.T) {
	t.Parallel()

	src := "[env.a]\ndeps = [{ replace = \"glob\", pattern = \"*.txt\" }]\n"
	_, err := ParseTOML("tox.toml", []byte(src))
	if !errors.Is(err, ErrParse) {
		t.Fatalf("ParseTOML() error = %v, want ErrParse", err)
	}
}

func TestTOMLRefTarget(t *testing.T) {
	t.Parallel()

	tests := []struct {
		path        []string
		wantSection string
		wantKey     string
	}{
		{path: []string{"env_list"}, wantSection: CoreSection, wantKey: "env_list"},
		{path: []string{"env_run_base", "deps"}, wantSection: BaseSection, wantKey: "deps"},
		{path: []string{"env", "docs", "commands"}, wantSection: "testenv:docs", wantKey: "commands"},
		{path: []string{"shared", "pass_env"}, wantSection: "shared", wantKey: "pass_env"},
	}
	for _, tt := range tests {
		section, key := tomlRefTarget(tt.path)
		if section != tt.wantSection || key != tt.wantKey {
			t.Errorf("tomlRefTarget(%v) = (%q, %q), want (%q, %q)", tt.path, section, key, tt.wantSection, tt.wantKey)
		}
	}
}

func TestScanKeyOrder(t *testing.T) {
	t.Parallel()

	src := "env_list = [\"b\", \"a\"]\nenv.b.commands = [[\"x\"]]\nenv.a.set_env = { Z = \"1\", A = \"2\" }\n"
	order, err := scanKeyOrder([]byte(src))
	if err != nil {
		t.Fatalf("scanKeyOrder() error: %v", err)
	}

	tests := []struct {
		path []string
		m    map[string]any
		want []string
	}{
		{path: nil, m: map[string]any{"env": nil, "env_list": nil}, want: []string{"env_list", "env"}},
		{path: []string{"env"}, m: map[string]any{"a": nil, "b": nil}, want: []string{"b", "a"}},
		{path: []string{"env", "a", "set_env"}, m: map[string]any{"A": nil, "Z": nil}, want: []string{"Z", "A"}},
		{path: []string{"env"}, m: map[string]any{"a": nil, "c": nil, "b": nil}, want: []string{"b", "a", "c"}},
	}
	for _, tt := range tests {
		if got := order.keys(tt.m, tt.path...); !slices.Equal(got, tt.want) {
			t.Errorf("keys(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}
