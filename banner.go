// banner.go: Startup banner
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira library
// SPDX-License-Identifier: MPL-2.0

package goadapters

import (
	"fmt"
	"io"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const banner = `
#####################################

           ／＞　　フ
　　　 　　|  _　 _ l
　 　　 　／ヽ ミ＿xノ
　　 　 /　　　 　 |
　　　 /　 ヽ　　 ﾉ
　 　 │　　|　|　|
　／￣|　　 |　|　|
　| (￣ヽ＿_ヽ_)__)
　＼二つ

#####################################
`

// PrintBanner writes the startup banner with the application identity, the
// environment and the listen address.
func PrintBanner(w io.Writer, appName, version string, app Context) {
	title := cases.Title(language.English)

	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "%s %s\n", title.String(appName), version)
	fmt.Fprintf(w, "environment: %s\n", title.String(app.Environment.String()))
	if app.Config != nil {
		fmt.Fprintf(w, "\nlistening on %s\n", app.Config.Server.Address())
	}
}
