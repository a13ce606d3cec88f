// Package ansible speaks the Ansible module protocol: it reads the arguments
// file Ansible copies to the switch and writes the JSON reply on stdout.
package ansible

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	shlex "github.com/anmitsu/go-shlex"

	"github.com/newtron-network/bgpprop/pkg/util"
	"github.com/newtron-network/bgpprop/pkg/verify"
)

// ModuleName is the name playbooks invoke this module by.
const ModuleName = "test_quagga_bgp_state_propagation"

// wrapperKey is used by newer Ansible versions to nest the arguments.
const wrapperKey = "ANSIBLE_MODULE_ARGS"

type argType int

const (
	typeStr argType = iota
	typeBool
	typeList
)

// argumentSpec lists the accepted parameters and their types.
var argumentSpec = []struct {
	name string
	typ  argType
}{
	{"switch_name", typeStr},
	{"leaf_network_list", typeStr},
	{"route_present", typeBool},
	{"leaf_list", typeList},
	{"hash_name", typeStr},
	{"log_dir_path", typeStr},
}

func supported(name string) bool {
	for _, a := range argumentSpec {
		if a.name == name {
			return true
		}
	}
	return false
}

// LoadArgs reads an Ansible arguments file and returns the coerced
// parameters. JSON files are the binary-module contract; a file holding
// key=value pairs is accepted too.
func LoadArgs(path string) (verify.Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return verify.DefaultParams(), util.NewConfigError(path, err)
	}
	p, err := ParseArgs(data)
	if err != nil {
		return p, util.NewConfigError(path, err)
	}
	return p, nil
}

// ParseArgs parses the contents of an arguments file.
func ParseArgs(data []byte) (verify.Params, error) {
	raw, err := decodeArgs(data)
	if err != nil {
		return verify.DefaultParams(), err
	}
	return coerce(raw)
}

func decodeArgs(data []byte) (map[string]interface{}, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return map[string]interface{}{}, nil
	}
	if trimmed[0] != '{' {
		return decodeKeyValue(string(trimmed))
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var raw map[string]interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse module arguments: %w", err)
	}
	if inner, ok := raw[wrapperKey].(map[string]interface{}); ok {
		raw = inner
	}
	return raw, nil
}

// decodeKeyValue handles the old-style `k1=v1 k2='v 2'` arguments format.
func decodeKeyValue(s string) (map[string]interface{}, error) {
	words, err := shlex.Split(s, true)
	if err != nil {
		return nil, fmt.Errorf("parse module arguments: %w", err)
	}
	raw := make(map[string]interface{}, len(words))
	for _, w := range words {
		k, v, ok := strings.Cut(w, "=")
		if !ok {
			return nil, fmt.Errorf("parse module arguments: %q is not key=value", w)
		}
		raw[k] = v
	}
	return raw, nil
}

func coerce(raw map[string]interface{}) (verify.Params, error) {
	p := verify.DefaultParams()

	var unsupported []string
	for k := range raw {
		if strings.HasPrefix(k, "_ansible_") {
			continue
		}
		if !supported(k) {
			unsupported = append(unsupported, k)
		}
	}
	if len(unsupported) > 0 {
		sort.Strings(unsupported)
		return p, fmt.Errorf("Unsupported parameters for (%s) module: %s", ModuleName, strings.Join(unsupported, ", "))
	}

	v := &util.ValidationBuilder{}
	for _, a := range argumentSpec {
		name := a.name
		val, ok := raw[name]
		if !ok || val == nil {
			continue
		}
		switch a.typ {
		case typeStr:
			s, err := toStr(val)
			if err != nil {
				v.AddErrorf("argument %s is of type %T and we were unable to convert to str: %v", name, val, err)
				continue
			}
			setStr(&p, name, s)
		case typeBool:
			b, err := toBool(val)
			if err != nil {
				v.AddErrorf("argument %s is of type %T and we were unable to convert to bool: %v", name, val, err)
				continue
			}
			p.RoutePresent = b
		case typeList:
			l, err := toList(val)
			if err != nil {
				v.AddErrorf("argument %s is of type %T and we were unable to convert to list: %v", name, val, err)
				continue
			}
			p.LeafList = l
		}
	}
	return p, v.Build()
}

func setStr(p *verify.Params, name, s string) {
	switch name {
	case "switch_name":
		p.SwitchName = s
	case "leaf_network_list":
		p.LeafNetworkList = s
	case "hash_name":
		p.HashName = s
	case "log_dir_path":
		p.LogDirPath = s
	}
}

func toStr(val interface{}) (string, error) {
	switch x := val.(type) {
	case string:
		return x, nil
	case json.Number:
		return x.String(), nil
	case bool:
		if x {
			return "True", nil
		}
		return "False", nil
	default:
		return "", fmt.Errorf("not a scalar")
	}
}

// ParseBool applies Ansible's boolean rules.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "on", "1", "true", "y", "t":
		return true, nil
	case "no", "off", "0", "false", "n", "f":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a valid boolean", s)
}

func toBool(val interface{}) (bool, error) {
	switch x := val.(type) {
	case bool:
		return x, nil
	case string:
		return ParseBool(x)
	case json.Number:
		f, err := strconv.ParseFloat(x.String(), 64)
		if err != nil {
			return false, err
		}
		switch f {
		case 1:
			return true, nil
		case 0:
			return false, nil
		}
		return false, fmt.Errorf("%s is not a valid boolean", x)
	default:
		return false, fmt.Errorf("not a boolean")
	}
}

func toList(val interface{}) (verify.StringList, error) {
	switch x := val.(type) {
	case []interface{}:
		out := make(verify.StringList, 0, len(x))
		for _, item := range x {
			s, err := toStr(item)
			if err != nil {
				return nil, fmt.Errorf("list item: %w", err)
			}
			out = append(out, s)
		}
		return out, nil
	case string:
		out := verify.StringList(util.SplitCommaSeparated(x))
		if out == nil {
			out = verify.StringList{}
		}
		return out, nil
	case json.Number:
		return verify.StringList{x.String()}, nil
	default:
		return nil, fmt.Errorf("not a list")
	}
}
