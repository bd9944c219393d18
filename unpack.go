package bootimg

import (
	"bufio"
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"bootimg/log"
)

const (
	HEADER_FILE      = "header"
	KERNEL_FILE      = "kernel"
	RAMDISK_FILE     = "ramdisk"
	SECOND_FILE      = "second"
	DTB_FILE         = "dtb"
	ABOOT_FILE       = "aboot"
	KERNEL_MTK_FILE  = "kernel_mtkhdr"
	RAMDISK_MTK_FILE = "ramdisk_mtkhdr"
	IPL_FILE         = "ipl"
	RPM_FILE         = "rpm"
	APPSBL_FILE      = "appsbl"
	SIN_FILE         = "sin"
	SIN_HDR_FILE     = "sin_hdr"
	NEW_BOOT         = "new-boot.img"
)

type component struct {
	name string
	get  func(b *BootImage) []byte
	set  func(b *BootImage, data []byte)
}

var components = []component{
	{KERNEL_FILE, (*BootImage).KernelImage, (*BootImage).SetKernelImage},
	{RAMDISK_FILE, (*BootImage).RamdiskImage, (*BootImage).SetRamdiskImage},
	{SECOND_FILE, (*BootImage).SecondBootloaderImage, (*BootImage).SetSecondBootloaderImage},
	{DTB_FILE, (*BootImage).DeviceTreeImage, (*BootImage).SetDeviceTreeImage},
	{ABOOT_FILE, (*BootImage).AbootImage, (*BootImage).SetAbootImage},
	{KERNEL_MTK_FILE, (*BootImage).KernelMtkHeader, (*BootImage).SetKernelMtkHeader},
	{RAMDISK_MTK_FILE, (*BootImage).RamdiskMtkHeader, (*BootImage).SetRamdiskMtkHeader},
	{IPL_FILE, (*BootImage).IplImage, (*BootImage).SetIplImage},
	{RPM_FILE, (*BootImage).RpmImage, (*BootImage).SetRpmImage},
	{APPSBL_FILE, (*BootImage).AppsblImage, (*BootImage).SetAppsblImage},
	{SIN_FILE, (*BootImage).SinImage, (*BootImage).SetSinImage},
	{SIN_HDR_FILE, (*BootImage).SinHeader, (*BootImage).SetSinHeader},
}

func dump(buf []byte, filename string) error {
	if len(buf) == 0 {
		return nil
	}
	fd, err := os.Create(filename)
	if err != nil {
		return &IOError{Op: "create", Path: filename, Err: err}
	}
	defer fd.Close()
	if _, err := io.Copy(fd, bytes.NewReader(buf)); err != nil {
		return &IOError{Op: "write", Path: filename, Err: err}
	}
	return nil
}

// Unpack writes every non-empty payload to its own file in dir, plus a
// header file with the scalar fields.
func (b *BootImage) Unpack(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return &IOError{Op: "mkdir", Path: dir, Err: err}
	}
	for _, c := range components {
		if err := dump(c.get(b), filepath.Join(dir, c.name)); err != nil {
			return err
		}
	}

	var hdr bytes.Buffer
	b.writeHeaderFile(&hdr)
	path := filepath.Join(dir, HEADER_FILE)
	if err := os.WriteFile(path, hdr.Bytes(), 0644); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}

func (b *BootImage) writeHeaderFile(w io.Writer) {
	i := &b.i10e
	fmt.Fprintf(w, "variant=%s\n", b.target)
	fmt.Fprintf(w, "name=%s\n", strconv.Quote(i.boardName))
	fmt.Fprintf(w, "cmdline=%s\n", strconv.Quote(i.cmdline))
	fmt.Fprintf(w, "page_size=%d\n", i.pageSize)
	fmt.Fprintf(w, "kernel_addr=0x%08x\n", i.kernelAddr)
	fmt.Fprintf(w, "ramdisk_addr=0x%08x\n", i.ramdiskAddr)
	fmt.Fprintf(w, "second_addr=0x%08x\n", i.secondAddr)
	fmt.Fprintf(w, "tags_addr=0x%08x\n", i.tagsAddr)
	fmt.Fprintf(w, "ipl_addr=0x%08x\n", i.iplAddr)
	fmt.Fprintf(w, "rpm_addr=0x%08x\n", i.rpmAddr)
	fmt.Fprintf(w, "appsbl_addr=0x%08x\n", i.appsblAddr)
	fmt.Fprintf(w, "entrypoint=0x%08x\n", i.entrypoint)
	fmt.Fprintf(w, "unused=0x%08x\n", i.hdrUnused)
	fmt.Fprintf(w, "id=%s\n", hex.EncodeToString(idBytes(i.hdrId)))
}

// Repack rebuilds an image from a directory written by Unpack. Missing
// payload files are treated as empty.
func Repack(dir string) (*BootImage, error) {
	b := &BootImage{source: ANDROID, target: ANDROID}

	path := filepath.Join(dir, HEADER_FILE)
	fd, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Op: "open", Path: path, Err: err}
	}
	defer fd.Close()
	if err := b.readHeaderFile(fd); err != nil {
		return nil, &ParseError{Variant: b.target, Err: fmt.Errorf("%s: %w", path, err)}
	}

	for _, c := range components {
		path := filepath.Join(dir, c.name)
		data, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			continue
		} else if err != nil {
			return nil, &IOError{Op: "read", Path: path, Err: err}
		}
		c.set(b, data)
	}
	return b, nil
}

func (b *BootImage) readHeaderFile(r io.Reader) error {
	i := &b.i10e
	addrs := map[string]*uint32{
		"page_size":    &i.pageSize,
		"kernel_addr":  &i.kernelAddr,
		"ramdisk_addr": &i.ramdiskAddr,
		"second_addr":  &i.secondAddr,
		"tags_addr":    &i.tagsAddr,
		"ipl_addr":     &i.iplAddr,
		"rpm_addr":     &i.rpmAddr,
		"appsbl_addr":  &i.appsblAddr,
		"entrypoint":   &i.entrypoint,
		"unused":       &i.hdrUnused,
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("malformed line %q", line)
		}
		switch key {
		case "variant":
			v := Name2Variant(value)
			if v == UNKNOWN {
				return fmt.Errorf("unknown variant %q", value)
			}
			b.source, b.target = v, v
		case "name", "cmdline":
			s, err := strconv.Unquote(value)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			if key == "name" {
				i.boardName = s
			} else {
				i.cmdline = s
			}
		case "id":
			raw, err := hex.DecodeString(value)
			if err != nil || len(raw) != 32 {
				return fmt.Errorf("invalid id %q", value)
			}
			for n := range i.hdrId {
				i.hdrId[n] = uint32(raw[n*4]) | uint32(raw[n*4+1])<<8 |
					uint32(raw[n*4+2])<<16 | uint32(raw[n*4+3])<<24
			}
		default:
			p, ok := addrs[key]
			if !ok {
				log.Warnf("Ignoring unknown header key %q", key)
				continue
			}
			n, err := strconv.ParseUint(value, 0, 32)
			if err != nil {
				return fmt.Errorf("%s: %w", key, err)
			}
			*p = uint32(n)
		}
	}
	return scanner.Err()
}
