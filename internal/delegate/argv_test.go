package delegate

import (
	"reflect"
	"testing"
)

func TestBuildArgv(t *testing.T) {
	tests := []struct {
		name       string
		subcommand string
		args       []string
		options    map[string]any
		want       []string
	}{
		{
			name:       "subcommand only",
			subcommand: "status",
			want:       []string{"status"},
		},
		{
			name:       "args keep order",
			subcommand: "deploy",
			args:       []string{"prod", "eu-west"},
			want:       []string{"deploy", "prod", "eu-west"},
		},
		{
			name:       "options sorted",
			subcommand: "deploy",
			args:       []string{"prod"},
			options:    map[string]any{"tag": "v1", "dry-run": true, "env": "x"},
			want:       []string{"deploy", "prod", "--dry-run", "--env", "x", "--tag", "v1"},
		},
		{
			name:       "false nil and empty omitted",
			subcommand: "run",
			options:    map[string]any{"quiet": false, "config": nil, "name": "", "verbose": true},
			want:       []string{"run", "--verbose"},
		},
		{
			name:       "slices repeat the flag",
			subcommand: "lint",
			options:    map[string]any{"path": []string{"src", "lib"}, "rule": []any{"a", 2, nil}},
			want:       []string{"lint", "--path", "src", "--path", "lib", "--rule", "a", "--rule", "2"},
		},
		{
			name:       "numbers rendered",
			subcommand: "scale",
			options:    map[string]any{"replicas": 3, "ratio": 0.5},
			want:       []string{"scale", "--ratio", "0.5", "--replicas", "3"},
		},
		{
			name:       "values are not interpreted",
			subcommand: "echo",
			args:       []string{"$(rm -rf /)", "a;b"},
			options:    map[string]any{"msg": "`id`"},
			want:       []string{"echo", "$(rm -rf /)", "a;b", "--msg", "`id`"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildArgv(tt.subcommand, tt.args, tt.options)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildArgv = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSetEnv(t *testing.T) {
	tests := []struct {
		name     string
		env      []string
		key      string
		value    string
		expected []string
	}{
		{"add new variable", []string{"FOO=bar"}, "BAZ", "qux", []string{"FOO=bar", "BAZ=qux"}},
		{"replace existing variable", []string{"FOO=bar", "BAZ=old"}, "BAZ", "new", []string{"FOO=bar", "BAZ=new"}},
		{"add to empty env", nil, "KEY", "val", []string{"KEY=val"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := setEnv(tt.env, tt.key, tt.value)
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("setEnv = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestBuildEnv_DoesNotMutateBase(t *testing.T) {
	base := []string{"PATH=/bin", "CONDUIT_CALLER=0"}
	env := buildEnv(base, "deploy", "1.0.0")
	if base[1] != "CONDUIT_CALLER=0" {
		t.Error("base environment was modified")
	}
	want := []string{"PATH=/bin", "CONDUIT_CALLER=1", "CONDUIT_COMPONENT=deploy", "CONDUIT_HOST_VERSION=1.0.0"}
	if !reflect.DeepEqual(env, want) {
		t.Errorf("buildEnv = %v, want %v", env, want)
	}
}
