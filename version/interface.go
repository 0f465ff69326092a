/*
 * MIT License
 *
 * Copyright (c) 2024 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

// Package version carries the build-time identity of a binary: release tag, build
// hash, build date, license, and the reflection-derived root package path used to
// compute relative paths for things like the default config search.
package version

import (
	"fmt"
	"os"
	"reflect"
	"runtime"
	"strings"
	"time"

	liberr "github.com/nabbar/statcollect/errors"
)

// Version exposes the identity of a running binary: release/build metadata,
// license information, and a handful of formatted helpers for CLI banners.
type Version interface {
	// GetPackage returns the application/package name.
	GetPackage() string

	// GetDescription returns the human-readable description of the application.
	GetDescription() string

	// GetBuild returns the build identifier (commit hash, CI build number, ...).
	GetBuild() string

	// GetRelease returns the release/tag string.
	GetRelease() string

	// GetAuthor returns the author, annotated with the source repository.
	GetAuthor() string

	// GetPrefix returns the upper-cased environment variable prefix for this app.
	GetPrefix() string

	// GetDate returns the formatted build date.
	GetDate() string

	// GetTime returns the parsed build date.
	GetTime() time.Time

	// GetAppId returns a one-line identifier combining release, runtime and platform.
	GetAppId() string

	// GetHeader returns a multi-line banner combining package, release, build and date.
	GetHeader() string

	// GetInfo returns a multi-line block of release/build/date information.
	GetInfo() string

	// GetRootPackagePath returns the import path of the root package, computed from
	// the reflect.Type of the struct passed to NewVersion, walked up numSubPackage levels.
	GetRootPackagePath() string

	// GetLicenseName returns the display name of the primary license.
	GetLicenseName() string

	// GetLicenseLegal returns the short legal notice for the primary license, and any
	// additional licenses passed in.
	GetLicenseLegal(add ...License) string

	// GetLicenseBoiler returns the short license boilerplate, and any additional
	// licenses passed in.
	GetLicenseBoiler(add ...License) string

	// GetLicenseFull returns the full license text, and any additional licenses
	// passed in.
	GetLicenseFull(add ...License) string

	// PrintInfo prints GetHeader to stderr.
	PrintInfo()

	// PrintLicense prints GetLicenseBoiler (and any additional licenses) to stderr.
	PrintLicense(add ...License)

	// CheckGo validates the running Go runtime version against a constraint
	// expression built from the given version and operator (e.g. "1.21", ">=").
	CheckGo(version string, operator string) liberr.Error
}

// NewVersion builds a Version from the given metadata.
//
//   - lic is the primary license of the project.
//   - pkg is the application name; if empty or "noname", it is derived from the
//     reflection-based package name of rootStruct.
//   - description is a one-line human description.
//   - dateStr is an RFC3339 build date; an unparsable value falls back to time.Now().
//   - build and release are free-form build/release identifiers.
//   - author is the author name, annotated with the root package path as source.
//   - prefix is upper-cased and used as the application's env var prefix.
//   - rootStruct is any value whose package path anchors GetRootPackagePath.
//   - numSubPackage walks up that many path segments from rootStruct's package.
func NewVersion(lic License, pkg, description, dateStr, build, release, author, prefix string, rootStruct interface{}, numSubPackage int) Version {
	pkgPath := reflect.TypeOf(rootStruct).PkgPath()

	if pkgPath == "" {
		pkgPath = reflect.TypeOf(NewVersion).PkgPath()
	}

	root := trimPackagePath(pkgPath, numSubPackage)

	if pkg == "" || pkg == "noname" {
		parts := strings.Split(pkgPath, "/")
		pkg = parts[len(parts)-1]
	}

	t, e := time.Parse(time.RFC3339, dateStr)
	if e != nil {
		t = time.Now()
	}

	return &vers{
		lic:  lic,
		pkg:  pkg,
		desc: description,
		date: t,
		bld:  build,
		rel:  release,
		aut:  author,
		pfx:  strings.ToUpper(prefix),
		root: root,
	}
}

func trimPackagePath(pkgPath string, numSubPackage int) string {
	parts := strings.Split(pkgPath, "/")
	for i := 0; i < numSubPackage && len(parts) > 1; i++ {
		parts = parts[:len(parts)-1]
	}
	return strings.Join(parts, "/")
}

type vers struct {
	lic  License
	pkg  string
	desc string
	date time.Time
	bld  string
	rel  string
	aut  string
	pfx  string
	root string
}

func (v *vers) GetPackage() string     { return v.pkg }
func (v *vers) GetDescription() string { return v.desc }
func (v *vers) GetBuild() string       { return v.bld }
func (v *vers) GetRelease() string     { return v.rel }

func (v *vers) GetAuthor() string {
	return fmt.Sprintf("%s (source: %s)", v.aut, v.root)
}

func (v *vers) GetPrefix() string { return v.pfx }

func (v *vers) GetDate() string {
	return v.date.Format(time.RFC1123)
}

func (v *vers) GetTime() time.Time {
	return v.date
}

func (v *vers) GetAppId() string {
	return fmt.Sprintf("%s [Runtime: %s %s/%s]", v.rel, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

func (v *vers) GetHeader() string {
	return fmt.Sprintf("%s - %s\nRelease: %s\nBuild: %s\nDate: %s", v.pkg, v.desc, v.rel, v.bld, v.GetDate())
}

func (v *vers) GetInfo() string {
	return fmt.Sprintf("Release: %s\nBuild: %s\nDate: %s\nLicense: %s", v.rel, v.bld, v.GetDate(), v.lic.Name())
}

func (v *vers) GetRootPackagePath() string {
	return v.root
}

func (v *vers) GetLicenseName() string {
	return v.lic.Name()
}

func (v *vers) GetLicenseLegal(add ...License) string {
	var sb strings.Builder
	sb.WriteString(v.lic.Legal())
	for _, l := range add {
		sb.WriteString("\n\n")
		sb.WriteString(l.Legal())
	}
	return sb.String()
}

func (v *vers) GetLicenseBoiler(add ...License) string {
	var sb strings.Builder
	sb.WriteString(v.lic.Boiler())
	for _, l := range add {
		sb.WriteString("\n\n")
		sb.WriteString(l.Boiler())
	}
	return sb.String()
}

func (v *vers) GetLicenseFull(add ...License) string {
	var sb strings.Builder
	sb.WriteString(v.lic.Full())
	for _, l := range add {
		sb.WriteString("\n\n---\n\n")
		sb.WriteString(l.Full())
	}
	return sb.String()
}

func (v *vers) PrintInfo() {
	_, _ = fmt.Fprintln(os.Stderr, v.GetHeader())
}

func (v *vers) PrintLicense(add ...License) {
	_, _ = fmt.Fprintln(os.Stderr, v.GetLicenseBoiler(add...))
}
