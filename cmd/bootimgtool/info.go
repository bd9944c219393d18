package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"bootimg"
	"bootimg/stub"
)

var infoCmd = &cobra.Command{
	Use:   "info FILE",
	Short: "Show the header fields of an image",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		img, err := bootimg.LoadFile(args[0])
		if err != nil {
			return err
		}
		printInfo(args[0], img)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}

func sizeCell(n int) string {
	return fmt.Sprintf("%d (%s)", n, humanize.IBytes(uint64(n)))
}

type payload struct {
	name string
	data []byte
}

// payloads lists every model payload, in the order Unpack writes them.
func payloads(img *bootimg.BootImage) []payload {
	return []payload{
		{"kernel", img.KernelImage()},
		{"ramdisk", img.RamdiskImage()},
		{"second", img.SecondBootloaderImage()},
		{"device tree", img.DeviceTreeImage()},
		{"aboot", img.AbootImage()},
		{"kernel mtk header", img.KernelMtkHeader()},
		{"ramdisk mtk header", img.RamdiskMtkHeader()},
		{"ipl", img.IplImage()},
		{"rpm", img.RpmImage()},
		{"appsbl", img.AppsblImage()},
		{"sin", img.SinImage()},
		{"sin header", img.SinHeader()},
	}
}

func printInfo(path string, img *bootimg.BootImage) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetTitle("%s", path)
	t.AppendHeader(table.Row{"Field", "Value"})

	var st stub.Stat_t
	if err := stub.Stat(path, &st); err == nil && st.Device() != 0 {
		t.AppendRow(table.Row{"device", fmt.Sprintf("%d:%d", stub.Major(st.Device()), stub.Minor(st.Device()))})
	}

	mask := bootimg.CapabilityMask(img.SourceVariant())
	t.AppendRow(table.Row{"variant", img.SourceVariant()})
	if mask.Has(bootimg.SUPPORTS_BOARD_NAME) {
		t.AppendRow(table.Row{"board name", img.BoardName()})
	}
	t.AppendRow(table.Row{"cmdline", img.KernelCmdline()})
	if mask.Has(bootimg.SUPPORTS_PAGE_SIZE) {
		t.AppendRow(table.Row{"page size", sizeCell(int(img.PageSize()))})
	}

	addrs := []struct {
		c    bootimg.Capability
		name string
		v    uint32
	}{
		{bootimg.SUPPORTS_KERNEL_ADDRESS, "kernel address", img.KernelAddress()},
		{bootimg.SUPPORTS_RAMDISK_ADDRESS, "ramdisk address", img.RamdiskAddress()},
		{bootimg.SUPPORTS_SECOND_ADDRESS, "second address", img.SecondBootloaderAddress()},
		{bootimg.SUPPORTS_TAGS_ADDRESS, "tags address", img.KernelTagsAddress()},
		{bootimg.SUPPORTS_IPL_ADDRESS, "ipl address", img.IplAddress()},
		{bootimg.SUPPORTS_RPM_ADDRESS, "rpm address", img.RpmAddress()},
		{bootimg.SUPPORTS_APPSBL_ADDRESS, "appsbl address", img.AppsblAddress()},
		{bootimg.SUPPORTS_ENTRYPOINT, "entrypoint", img.EntrypointAddress()},
	}
	for _, a := range addrs {
		if mask.Has(a.c) {
			t.AppendRow(table.Row{a.name, fmt.Sprintf("0x%08x", a.v)})
		}
	}

	images := payloads(img)
	for _, i := range images {
		if len(i.data) == 0 {
			continue
		}
		cell := sizeCell(len(i.data))
		if f := bootimg.CheckFmt(i.data); f != bootimg.RAW {
			cell += ", " + f.String()
		}
		t.AppendRow(table.Row{i.name, cell})
	}
	t.AppendRow(table.Row{"capabilities", strings.Join(mask.Names(), "\n")})
	t.Render()

	for _, w := range img.Warnings() {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}
}
