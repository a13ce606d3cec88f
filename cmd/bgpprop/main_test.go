package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/newtron-network/bgpprop/internal/testutil"
	"github.com/newtron-network/bgpprop/pkg/record"
	"github.com/newtron-network/bgpprop/pkg/report"
	"github.com/newtron-network/bgpprop/pkg/settings"
	"github.com/newtron-network/bgpprop/pkg/verify"
)

const learned = "B>* 10.0.0.0/24 [20/0] via 10.1.1.1, eth-3-1, 00:00:12\n"

func writeArgs(t *testing.T, args map[string]interface{}) string {
	t.Helper()
	data, err := json.Marshal(args)
	if err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "args")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func moduleArgs(logDir string, present bool) map[string]interface{} {
	return map[string]interface{}{
		"switch_name":       "spine1",
		"leaf_network_list": "10.0.0.0/24",
		"leaf_list":         []string{"leaf1", "leaf2"},
		"route_present":     present,
		"hash_name":         "bgp-1",
		"log_dir_path":      logDir,
		"_ansible_debug":    false,
	}
}

type moduleReply struct {
	Changed     bool               `json:"changed"`
	Failed      bool               `json:"failed"`
	Msg         string             `json:"msg"`
	HashDict    map[string]*string `json:"hash_dict"`
	LogFilePath string             `json:"log_file_path"`
}

func decodeReply(t *testing.T, buf *bytes.Buffer) moduleReply {
	t.Helper()
	var r moduleReply
	if err := json.Unmarshal(buf.Bytes(), &r); err != nil {
		t.Fatalf("reply is not JSON: %v\n%s", err, buf.String())
	}
	return r
}

func TestRunModuleBothPhases(t *testing.T) {
	logDir := t.TempDir()
	fake := testutil.NewFakeRunner().Stdout(verify.RouteTableCommand, learned)

	var out bytes.Buffer
	if err := runModule(context.Background(), writeArgs(t, moduleArgs(logDir, true)), &out, fake); err != nil {
		t.Fatalf("presence phase: %v", err)
	}
	reply := decodeReply(t, &out)
	if reply.Failed || reply.Changed {
		t.Errorf("reply = %+v", reply)
	}
	if got := reply.HashDict[record.KeyStatus]; got == nil || *got != "Passed" {
		t.Errorf("result.status = %v, want Passed", got)
	}
	if want := filepath.Join(logDir, "bgp-1.log"); reply.LogFilePath != want {
		t.Errorf("log_file_path = %q, want %q", reply.LogFilePath, want)
	}
	if !strings.HasPrefix(out.String(), `{"changed":false,"hash_dict":{"spine1 `+testutil.Stamp(0)+` vtysh -c 'sh running-config'"`) {
		t.Errorf("hash_dict not in record order: %s", out.String())
	}

	// Absence phase: the route is still there, so the verdict is Failed but
	// the module itself succeeds and appends to the same log.
	out.Reset()
	if err := runModule(context.Background(), writeArgs(t, moduleArgs(logDir, false)), &out, fake); err != nil {
		t.Fatalf("absence phase: %v", err)
	}
	reply = decodeReply(t, &out)
	if got := reply.HashDict[record.KeyStatus]; got == nil || *got != "Failed" {
		t.Errorf("result.status = %v, want Failed", got)
	}
	if got := reply.HashDict["leaf1 ifconfig eth-19-1 down"]; got != nil {
		t.Errorf("placeholder value = %q, want null", *got)
	}

	pairs, err := report.ReadLogFile(reply.LogFilePath)
	if err != nil {
		t.Fatal(err)
	}
	var statuses []string
	for _, p := range pairs {
		if p.Key == record.KeyStatus {
			statuses = append(statuses, p.Value)
		}
	}
	if diff := cmp.Diff([]string{"Passed", "Failed"}, statuses); diff != "" {
		t.Errorf("log statuses (-want +got):\n%s", diff)
	}
}

func TestRunModuleFailures(t *testing.T) {
	logDir := t.TempDir()

	tests := []struct {
		name    string
		args    map[string]interface{}
		wantMsg string
	}{
		{
			name:    "unsupported parameter",
			args:    map[string]interface{}{"switch_name": "spine1", "bogus": true},
			wantMsg: "Unsupported parameters",
		},
		{
			name:    "missing hash name",
			args:    map[string]interface{}{"switch_name": "spine1", "leaf_network_list": "10.0.0.0/24", "log_dir_path": logDir},
			wantMsg: "hash_name is required",
		},
		{
			name:    "log dir missing",
			args:    moduleArgs(filepath.Join(logDir, "nope"), true),
			wantMsg: "open log",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := testutil.NewFakeRunner()
			var out bytes.Buffer
			err := runModule(context.Background(), writeArgs(t, tt.args), &out, fake)
			if !errors.Is(err, errModuleFailed) {
				t.Fatalf("err = %v, want errModuleFailed", err)
			}
			reply := decodeReply(t, &out)
			if !reply.Failed || !strings.Contains(reply.Msg, tt.wantMsg) {
				t.Errorf("reply = %+v, want failed with %q", reply, tt.wantMsg)
			}
		})
	}
}

func TestRunModuleValidationRunsNothing(t *testing.T) {
	fake := testutil.NewFakeRunner()
	var out bytes.Buffer
	_ = runModule(context.Background(), writeArgs(t, map[string]interface{}{"route_present": false}), &out, fake)
	if len(fake.Calls) != 0 {
		t.Errorf("commands ran before validation failed: %v", fake.Calls)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errModuleFailed, 1},
		{errTestFailure, 1},
		{errors.New("boom"), 1},
		{errInfraError, 2},
	}
	for _, tt := range tests {
		if got := exitCode(tt.err); got != tt.want {
			t.Errorf("exitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestResolveParams(t *testing.T) {
	paramFile := filepath.Join(t.TempDir(), "run.yaml")
	yaml := `switch_name: spine1
leaf_network_list: 10.0.0.0/24
leaf_list: leaf1,leaf2
hash_name: bgp-1
`
	if err := os.WriteFile(paramFile, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}

	cmd, f := verifyCommand()
	if err := cmd.Flags().Parse([]string{
		"--params", paramFile,
		"--switch-name", "spine2",
		"--route-present=false",
	}); err != nil {
		t.Fatal(err)
	}

	p, err := f.resolveParams(cmd.Flags(), &settings.Settings{LogDir: "/var/log/regtest"})
	if err != nil {
		t.Fatalf("resolveParams: %v", err)
	}
	want := verify.Params{
		SwitchName:      "spine2",
		LeafNetworkList: "10.0.0.0/24",
		LeafList:        verify.StringList{"leaf1", "leaf2"},
		RoutePresent:    false,
		HashName:        "bgp-1",
		LogDirPath:      "/var/log/regtest",
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Errorf("params (-want +got):\n%s", diff)
	}
}

func TestResolveRedisAddr(t *testing.T) {
	cmd, f := verifyCommand()
	s := &settings.Settings{RedisAddr: "settings:6379"}

	t.Setenv(envRedisAddr, "")
	if got := f.resolveRedisAddr(cmd.Flags(), s); got != "settings:6379" {
		t.Errorf("settings fallback = %q", got)
	}

	t.Setenv(envRedisAddr, "env:6379")
	if got := f.resolveRedisAddr(cmd.Flags(), s); got != "env:6379" {
		t.Errorf("env = %q", got)
	}

	if err := cmd.Flags().Parse([]string{"--redis-addr", "flag:6379"}); err != nil {
		t.Fatal(err)
	}
	if got := f.resolveRedisAddr(cmd.Flags(), s); got != "flag:6379" {
		t.Errorf("flag = %q", got)
	}
}

func TestFirstNonEmpty(t *testing.T) {
	if got := firstNonEmpty("", "", "root"); got != "root" {
		t.Errorf("firstNonEmpty = %q", got)
	}
	if got := firstNonEmpty(); got != "" {
		t.Errorf("firstNonEmpty() = %q", got)
	}
}
