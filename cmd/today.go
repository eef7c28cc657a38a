package cmd

import (
	"github.com/sgallant/tfsa"
	"github.com/sgallant/tfsa/renderer"
)

// today goes through the renderer clock so documentation scenarios can pin
// the date.
func today() tfsa.Date {
	return tfsa.NewDate(renderer.Now().Date())
}
