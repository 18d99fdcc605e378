//go:build tinygo

package main

import (
	"time"

	"github.com/Chati-SidecarTridge/md-microfirmware-template/app"
	"github.com/Chati-SidecarTridge/md-microfirmware-template/hal"
)

func main() {
	h := hal.New()
	fw, err := app.New(h, app.Options{})
	if err != nil {
		h.Logger().WriteLineString("boot: " + err.Error())
		for {
			h.Clock().Sleep(time.Second)
		}
	}
	if err := hal.OnBusStrobe(fw.OnBusEvent); err != nil {
		h.Logger().WriteLineString("boot: bus strobe: " + err.Error())
	}
	fw.Run()
}
