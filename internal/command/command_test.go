// SPDX-License-Identifier: MPL-2.0

package command

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"
)

func TestJoinContinuations(t *testing.T) {
	t.Parallel()

	got := JoinContinuations([]string{
		`pytest \`,
		`  --cov=src \`,
		`  tests`,
		`flake8 src`,
		`dangling \`,
	})
	want := []string{"pytest --cov=src tests", "flake8 src", "dangling"}
	if !slices.Equal(got, want) {
		t.Errorf("JoinContinuations() = %q, want %q", got, want)
	}
}

func TestAssembleOne_Posargs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		template string
		posargs  []string
		want     []string
	}{
		{"default used", "cmd {posargs:foo}", nil, []string{"cmd", "foo"}},
		{"args replace default", "cmd {posargs:foo}", []string{"bar", "baz"}, []string{"cmd", "bar", "baz"}},
		{"empty args use default", "cmd {posargs:foo}", []string{}, []string{"cmd", "foo"}},
		{"no default", "cmd {posargs}", nil, []string{"cmd"}},
		{"multi-token default", "pytest {posargs:tests -x}", nil, []string{"pytest", "tests", "-x"}},
		{"quoted default", `pytest {posargs:"my tests"}`, nil, []string{"pytest", "my tests"}},
		{"args verbatim", "cmd {posargs}", []string{"a b", "{envname}"}, []string{"cmd", "a b", "{envname}"}},
		{"glued left", "pytest --cov={posargs:src}", nil, []string{"pytest", "--cov=src"}},
		{"glued left with args", "pytest --cov={posargs:src}", []string{"a", "b"}, []string{"pytest", "--cov=a", "b"}},
		{"glued right", "cmd {posargs:x}.txt", []string{"a", "b"}, []string{"cmd", "a", "b.txt"}},
		{"glued both empty", "cmd pre{posargs}post", nil, []string{"cmd", "prepost"}},
		{"placeholder in middle", "cmd {posargs:a} --end", nil, []string{"cmd", "a", "--end"}},
		{"two placeholders", "cmd {posargs:a} -- {posargs:b}", []string{"x"}, []string{"cmd", "x", "--", "x"}},
		{"not a placeholder", "echo {posargsfoo}", []string{"x"}, []string{"echo", "{posargsfoo}"}},
		{"quoted text", `python -c 'print("hi")' {posargs}`, nil, []string{"python", "-c", `print("hi")`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cmd, err := AssembleOne(tt.template, tt.posargs, Substitutions{})
			if err != nil {
				t.Fatalf("AssembleOne(%q) error: %v", tt.template, err)
			}
			if !slices.Equal(cmd.Argv, tt.want) {
				t.Errorf("AssembleOne(%q, %q) = %q, want %q", tt.template, tt.posargs, cmd.Argv, tt.want)
			}
		})
	}
}

func TestAssembleOne_Substitutions(t *testing.T) {
	t.Parallel()

	subs := Substitutions{Root: "/src/proj", EnvName: "py312"}
	cmd, err := AssembleOne("python {tox_root}{/}run.py --env {envname} {posargs:{toxinidir}/tests}", nil, subs)
	if err != nil {
		t.Fatalf("AssembleOne() error: %v", err)
	}
	want := []string{"python", "/src/proj" + string(filepath.Separator) + "run.py", "--env", "py312", "/src/proj/tests"}
	if !slices.Equal(cmd.Argv, want) {
		t.Errorf("Argv = %q, want %q", cmd.Argv, want)
	}
}

func TestAssembleOne_IgnorePrefix(t *testing.T) {
	t.Parallel()

	cmd, err := AssembleOne("- coverage erase", nil, Substitutions{})
	if err != nil {
		t.Fatalf("AssembleOne() error: %v", err)
	}
	if !cmd.IgnoreExitCode || !slices.Equal(cmd.Argv, []string{"coverage", "erase"}) {
		t.Errorf("AssembleOne() = %+v", cmd)
	}
	if got := cmd.String(); got != "- coverage erase" {
		t.Errorf("String() = %q", got)
	}
}

func TestAssembleOne_Errors(t *testing.T) {
	t.Parallel()

	for _, tmpl := range []string{`echo "unterminated`, "cmd {posargs:x", `cmd "{posargs}"`} {
		_, err := AssembleOne(tmpl, nil, Substitutions{})
		if !errors.Is(err, ErrInvalidCommand) {
			t.Errorf("AssembleOne(%q) error = %v, want ErrInvalidCommand", tmpl, err)
		}
	}
}

func TestAssemble(t *testing.T) {
	t.Parallel()

	templates := []string{
		`pytest \`,
		`  {posargs:tests}`,
		"{posargs}",
		"- coverage report",
	}

	cmds, err := Assemble(templates, nil, Substitutions{})
	if err != nil {
		t.Fatalf("Assemble() error: %v", err)
	}
	if len(cmds) != 2 {
		t.Fatalf("Assemble() = %d commands, want 2 (empty command dropped)", len(cmds))
	}
	if !slices.Equal(cmds[0].Argv, []string{"pytest", "tests"}) || cmds[0].Template != "pytest {posargs:tests}" {
		t.Errorf("cmds[0] = %+v", cmds[0])
	}
	if !cmds[1].IgnoreExitCode || cmds[1].Executable() != "coverage" {
		t.Errorf("cmds[1] = %+v", cmds[1])
	}
}

func TestAssemble_Pure(t *testing.T) {
	t.Parallel()

	templates := []string{"cmd {posargs:foo}"}
	args := []string{"bar"}
	first, _ := Assemble(templates, args, Substitutions{})
	second, _ := Assemble(templates, args, Substitutions{})
	if !slices.Equal(first[0].Argv, second[0].Argv) || args[0] != "bar" {
		t.Errorf("Assemble() not repeatable: %q vs %q", first[0].Argv, second[0].Argv)
	}
}

func TestCommandString(t *testing.T) {
	t.Parallel()

	cmd := Command{Argv: []string{"flake8", "src dir", "it's"}}
	if got, want := cmd.String(), `flake8 'src dir' "it's"`; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
