//go:build ignore

// gen-syso writes the Windows resource object for cmd/traffic-silencer: the
// application icon and a manifest requesting administrator rights and common
// controls v6, which walk's table checkboxes need.
// Usage: go run build/gen-syso/main.go [output.syso]
package main

import (
	"bytes"
	"fmt"
	"os"

	"github.com/tc-hib/winres"

	"github.com/user/traffic-silencer/internal/iconres"
)

func main() {
	output := "cmd/traffic-silencer/rsrc_windows_amd64.syso"
	if len(os.Args) > 1 {
		output = os.Args[1]
	}

	icon, err := winres.LoadICO(bytes.NewReader(iconres.AppIcon()))
	if err != nil {
		fail("load icon: %v", err)
	}

	rs := &winres.ResourceSet{}
	if err := rs.SetIcon(winres.Name("APPICON"), icon); err != nil {
		fail("set icon: %v", err)
	}
	rs.SetManifest(winres.AppManifest{
		Identity: winres.AssemblyIdentity{
			Name: "traffic-silencer",
		},
		Description:         "Traffic Silencer",
		ExecutionLevel:      winres.RequireAdministrator,
		DPIAwareness:        winres.DPIPerMonitorV2,
		UseCommonControlsV6: true,
	})

	f, err := os.Create(output)
	if err != nil {
		fail("create %s: %v", output, err)
	}
	defer f.Close()

	if err := rs.WriteObject(f, winres.ArchAMD64); err != nil {
		fail("write %s: %v", output, err)
	}
	fmt.Printf("Wrote %s\n", output)
}

func fail(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
