// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package synpair

import (
	"fmt"
	"sort"
)

// Sel is one documented change to a Config.
type Sel struct {
	Doc string
	Set func(cfg *Config)
}

// Sheet is an ordered list of changes applied together.
type Sheet []*Sel

// Sheets are named alternative parameter sets.
type Sheets map[string]Sheet

// ParamSets are the variants of the scenario.
// Base is always applied, and others can be optionally selected to apply on top of that.
var ParamSets = Sheets{
	"Base": {
		{Doc: "pre1 excites strongly enough to fire the post cell, pre2 inhibits",
			Set: func(cfg *Config) {
				cfg.Mode = Both
				cfg.Exc.Weight = 0.005
				cfg.Inh.Weight = 0.01
			}},
	},
	"SmallEPSP": {
		{Doc: "pre1 alone, giving a subthreshold EPSP",
			Set: func(cfg *Config) {
				cfg.Mode = Excite
				cfg.Exc.Weight = 0.002
			}},
	},
	"TwoEPSP": {
		{Doc: "two small EPSPs, one from each presynaptic cell",
			Set: func(cfg *Config) {
				cfg.Mode = TwoExcite
				cfg.Exc.Weight = 0.002
			}},
	},
}

// Names returns the sheet names in sorted order.
func (sh Sheets) Names() []string {
	nms := make([]string, 0, len(sh))
	for nm := range sh {
		nms = append(nms, nm)
	}
	sort.Strings(nms)
	return nms
}

// Apply applies Base and then each named sheet to cfg, in order.
func (sh Sheets) Apply(cfg *Config, names ...string) error {
	for _, nm := range append([]string{"Base"}, names...) {
		sht, ok := sh[nm]
		if !ok {
			return fmt.Errorf("synpair: no param sheet named %q", nm)
		}
		for _, sel := range sht {
			sel.Set(cfg)
		}
	}
	return nil
}
