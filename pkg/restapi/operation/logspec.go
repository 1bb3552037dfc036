/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package operation

import (
	"errors"
	"sort"
	"strings"

	"github.com/trustbloc/edge-core/pkg/log"
)

const (
	logSpecSeparator     = ":"
	moduleLevelSeparator = "="
	epfModulePrefix      = "epf-"
)

var errBlankLogSpec = errors.New("log spec is blank")

// setLogSpec applies the spec only if every entry in it parses.
func setLogSpec(spec string) error {
	if strings.TrimSpace(spec) == "" {
		return errBlankLogSpec
	}

	return log.SetSpec(spec)
}

// getLogSpec reports the levels set for EPF modules followed by the default level.
func getLogSpec() string {
	var entries []string

	for module, level := range log.GetAllLevels() {
		if strings.HasPrefix(module, epfModulePrefix) {
			entries = append(entries, module+moduleLevelSeparator+log.ParseString(level))
		}
	}

	sort.Strings(entries)

	return strings.Join(append(entries, log.ParseString(log.GetLevel(""))), logSpecSeparator)
}
