// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/invowk/cats/cmd/cats"

func main() {
	cmd.Execute()
}
