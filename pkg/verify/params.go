// Package verify checks that a BGP route propagates after a Quagga restart,
// or is withdrawn after its links are shut down.
package verify

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/newtron-network/bgpprop/pkg/util"
)

// Params are the inputs of one verification run.
type Params struct {
	SwitchName      string     `yaml:"switch_name" json:"switch_name"`
	LeafNetworkList string     `yaml:"leaf_network_list" json:"leaf_network_list"`
	LeafList        StringList `yaml:"leaf_list" json:"leaf_list"`
	RoutePresent    bool       `yaml:"route_present" json:"route_present"`
	HashName        string     `yaml:"hash_name" json:"hash_name"`
	LogDirPath      string     `yaml:"log_dir_path" json:"log_dir_path"`
}

// DefaultParams returns the parameter defaults: no leaves, route expected.
func DefaultParams() Params {
	return Params{LeafList: StringList{}, RoutePresent: true}
}

// Networks returns the leaf networks, in order.
func (p Params) Networks() []string {
	return util.SplitCommaSeparated(p.LeafNetworkList)
}

// FirstLeaf returns the first leaf switch, the one whose links are shut down
// and whose network is checked.
func (p Params) FirstLeaf() string {
	return util.FirstOf(p.LeafList)
}

// SkipRouteCheck reports whether this switch is the first leaf. That switch
// originates the route, so it never sees it as a BGP-learned entry.
func (p Params) SkipRouteCheck() bool {
	return util.IndexOf(p.LeafList, p.SwitchName) == 0
}

// Route returns the routing-table line prefix that marks the route as
// BGP-learned and selected.
func (p Params) Route() string {
	return "B>* " + util.FirstOf(p.Networks())
}

// Validate reports every missing input at once.
func (p Params) Validate() error {
	v := &util.ValidationBuilder{}
	v.Add(p.SwitchName != "", "switch_name is required")
	v.Add(p.HashName != "", "hash_name is required")
	v.Add(p.LogDirPath != "", "log_dir_path is required")
	if !p.SkipRouteCheck() {
		v.Add(len(p.Networks()) > 0, "leaf_network_list must name at least one network")
	}
	if !p.RoutePresent {
		v.Add(len(p.LeafList) > 0, "leaf_list is required when route_present is false")
	}
	return v.Build()
}

// StringList is a list that also accepts a comma-separated scalar.
type StringList []string

// UnmarshalYAML accepts a sequence or a comma-separated string.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = util.SplitCommaSeparated(s)
		if *l == nil {
			*l = StringList{}
		}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("line %d: leaf_list must be a list or a comma-separated string", value.Line)
	}
}

// LoadParams reads parameters from a YAML file on top of the defaults.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, util.NewConfigError(path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return p, util.NewConfigError(path, err)
	}
	return p, nil
}
