// SPDX-License-Identifier: MPL-2.0

// Command manifestoo inspects Odoo addons and computes the core metadata of
// their Python distributions.
package main

import (
	"os"

	cmd "github.com/manifestoo/manifestoo/cmd/manifestoo"
)

func main() {
	os.Exit(cmd.Execute())
}
