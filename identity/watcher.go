// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package identity

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Run - reload the network map whenever its file changes
//
// the directory is watched so that editors replacing the file are seen
func (r *Resolver) Run(args interface{}, shutdown <-chan struct{}) {
	watcher, err := fsnotify.NewWatcher()
	if nil != err {
		r.log.Errorf("new watcher error: %s", err)
		<-shutdown
		return
	}
	defer watcher.Close()

	fileName, err := filepath.Abs(filepath.Clean(r.fileName))
	if nil != err {
		r.log.Errorf("network map: %s  error: %s", r.fileName, err)
		<-shutdown
		return
	}
	if err := watcher.Add(filepath.Dir(fileName)); nil != err {
		r.log.Errorf("watcher add error: %s", err)
		<-shutdown
		return
	}

	r.log.Info("starting…")
loop:
	for {
		select {
		case <-shutdown:
			break loop

		case event := <-watcher.Events:
			if filepath.Clean(event.Name) != fileName {
				continue loop
			}
			if !fileChanged(event) {
				continue loop
			}
			r.log.Infof("file event: %v", event)
			if err := r.Reload(); nil != err {
				r.log.Errorf("reload error: %s", err)
			}

		case err := <-watcher.Errors:
			r.log.Warnf("watcher error: %s", err)
		}
	}
	r.log.Info("shutting down…")
}

func fileChanged(event fsnotify.Event) bool {
	return event.Op&fsnotify.Write == fsnotify.Write ||
		event.Op&fsnotify.Create == fsnotify.Create ||
		event.Op&fsnotify.Rename == fsnotify.Rename
}
