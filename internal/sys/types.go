// Copyright 2025 Lemon4ksan. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sys interprets the host-dependent parts of a central directory
// entry: the "version made by" host byte and the external attributes.
package sys

import "io/fs"

// HostSystem represents the host system on which the ZIP file was created
type HostSystem uint8

// Supported host systems as defined by APPNOTE.TXT
const (
	HostSystemFAT       HostSystem = 0  // MS-DOS and OS/2 (FAT / VFAT / FAT32 file systems)
	HostSystemAmiga     HostSystem = 1  // Amiga
	HostSystemOpenVMS   HostSystem = 2  // OpenVMS
	HostSystemUNIX      HostSystem = 3  // UNIX
	HostSystemVMCMS     HostSystem = 4  // VM/CMS
	HostSystemAtariST   HostSystem = 5  // Atari ST
	HostSystemOS2HPFS   HostSystem = 6  // OS/2 H.P.F.S.
	HostSystemMacintosh HostSystem = 7  // Macintosh
	HostSystemZSystem   HostSystem = 8  // Z-System
	HostSystemCPM       HostSystem = 9  // CP/M
	HostSystemNTFS      HostSystem = 10 // Windows NTFS
	HostSystemMVS       HostSystem = 11 // MVS (OS/390 - Z/OS)
	HostSystemVSE       HostSystem = 12 // VSE
	HostSystemAcornRisc HostSystem = 13 // Acorn Risc
	HostSystemVFAT      HostSystem = 14 // VFAT
	HostSystemAltMVS    HostSystem = 15 // alternate MVS
	HostSystemBeOS      HostSystem = 16 // BeOS
	HostSystemTandem    HostSystem = 17 // Tandem
	HostSystemOS400     HostSystem = 18 // OS/400
	HostSystemDarwin    HostSystem = 19 // OS X (Darwin)
)

var hostNames = map[HostSystem]string{
	HostSystemFAT:       "MS-DOS/OS2 (FAT)",
	HostSystemAmiga:     "Amiga",
	HostSystemOpenVMS:   "OpenVMS",
	HostSystemUNIX:      "UNIX",
	HostSystemVMCMS:     "VM/CMS",
	HostSystemAtariST:   "Atari ST",
	HostSystemOS2HPFS:   "OS/2 HPFS",
	HostSystemMacintosh: "Macintosh",
	HostSystemZSystem:   "Z-System",
	HostSystemCPM:       "CP/M",
	HostSystemNTFS:      "Windows NTFS",
	HostSystemMVS:       "MVS (OS/390 - Z/OS)",
	HostSystemVSE:       "VSE",
	HostSystemAcornRisc: "Acorn Risc",
	HostSystemVFAT:      "VFAT",
	HostSystemAltMVS:    "Alternate MVS",
	HostSystemBeOS:      "BeOS",
	HostSystemTandem:    "Tandem",
	HostSystemOS400:     "OS/400",
	HostSystemDarwin:    "OS X (Darwin)",
}

func (h HostSystem) String() string {
	if name, exists := hostNames[h]; exists {
		return name
	}
	return "Unknown"
}

// HostFromVersion extracts the host byte from a "version made by" field.
func HostFromVersion(versionMadeBy uint16) HostSystem {
	return HostSystem(versionMadeBy >> 8)
}

// Unix constants for file types (standard POSIX)
const (
	S_IFMT  = 0170000
	S_IFREG = 0100000 // Regular file
	S_IFDIR = 0040000 // Directory
	S_IFLNK = 0120000 // Symlink
)

// MS-DOS attribute bits stored in the low byte of the external attributes.
const (
	dosReadOnly  = 0x01
	dosDirectory = 0x10
)

// FileMode converts external attributes into an fs.FileMode. Unix-like
// hosts keep st_mode in the upper 16 bits; everyone else only has the DOS
// attribute byte.
func FileMode(host HostSystem, external uint32) fs.FileMode {
	switch host {
	case HostSystemUNIX, HostSystemDarwin:
		unixMode := external >> 16
		if unixMode != 0 {
			return unixToFileMode(unixMode)
		}
	}

	mode := fs.FileMode(0o666)
	if external&dosReadOnly != 0 {
		mode = 0o444
	}
	if external&dosDirectory != 0 {
		mode |= fs.ModeDir | 0o111
	}
	return mode
}

func unixToFileMode(m uint32) fs.FileMode {
	mode := fs.FileMode(m & 0o777)
	switch m & S_IFMT {
	case S_IFDIR:
		mode |= fs.ModeDir
	case S_IFLNK:
		mode |= fs.ModeSymlink
	}
	return mode
}
