package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func usage() {
	prog := strings.TrimSuffix(filepath.Base(os.Args[0]), filepath.Ext(os.Args[0]))
	text := fmt.Sprintf(
		" qdl drives a Qualcomm EDL (Emergency Download) target: it uploads a"+
			" signed bootstrap loader over Sahara, then uses Firehose to program"+
			" partitions, apply storage-metadata patches, provision UFS, and"+
			" reboot the device."+
			"\n"+
			" Usage of %s:\n"+
			" -h, --help                  | none   | Prints the help you see now and exits\n"+
			" -d, --debug                 | none   | Hex-dump Firehose traffic to stderr\n"+
			" -f, --firmware              | none   | Skip non-firmware partitions while programming\n"+
			" -s, --storage               | string | MemoryName given to Firehose configure     | %s\n"+
			" -l, --finalize-provisioning | none   | Unlock real UFS OTP provisioning\n"+
			" -i, --include               | string | Directory searched first for program payloads\n"+
			"\n"+
			" %s <prog.mbn> <manifest.xml> [<manifest.xml> ...]\n",
		prog, defaultStorage, prog)
	fmt.Fprint(os.Stderr, text)
}
