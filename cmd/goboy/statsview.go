package main

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/thelolagemann/dmgcore/pkg/log"
)

const statsAddress = "localhost:12600"

// launchStats serves runtime statistics on statsAddress in the
// background.
func launchStats(l log.Logger) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(statsAddress))
		mgr := statsview.New()
		mgr.Start()
	}()
	l.Infof("stats server available at %s/debug/statsview", statsAddress)
}
