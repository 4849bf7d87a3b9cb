// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bitmark-inc/tranched/fault"
	"github.com/bitmark-inc/tranched/util"
)

// DataDirectory - resolve the data_directory setting
//
// "." is the directory holding the configuration file; the result must
// be an existing directory
func DataDirectory(configurationFileName string, dataDirectory string) (string, error) {
	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return "", err
	}

	switch dataDirectory {
	case "", "~":
		return "", fmt.Errorf("%w: path: %q is not a valid directory", fault.ErrInvalidConfiguration, dataDirectory)
	case ".":
		dataDirectory, _ = filepath.Split(configurationFileName)
	}
	dataDirectory, err = filepath.Abs(filepath.Clean(dataDirectory))
	if nil != err {
		return "", err
	}

	// this directory must exist - i.e. must be created prior to running
	fileInfo, err := os.Stat(dataDirectory)
	if nil != err {
		return "", err
	}
	if !fileInfo.IsDir() {
		return "", fmt.Errorf("%w: path: %q is not a directory", fault.ErrInvalidConfiguration, dataDirectory)
	}
	return dataDirectory, nil
}

// MakeAbsolute - place every relative path under directory
func MakeAbsolute(directory string, paths ...*string) {
	for _, p := range paths {
		*p = util.EnsureAbsolute(directory, *p)
	}
}

// MakeOptionalAbsolute - as MakeAbsolute but blank paths stay blank
func MakeOptionalAbsolute(directory string, paths ...*string) {
	for _, p := range paths {
		if "" != *p {
			*p = util.EnsureAbsolute(directory, *p)
		}
	}
}

// PlainName - a file name without any directory part, joined to
// directory when that is not blank
func PlainName(name string, directory string) (string, error) {
	switch filepath.Dir(name) {
	case "", ".":
	default:
		return "", fmt.Errorf("%w: file: %q is not plain name", fault.ErrInvalidConfiguration, name)
	}
	if "" == directory {
		return name, nil
	}
	return util.EnsureAbsolute(directory, name), nil
}
