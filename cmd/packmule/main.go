// SPDX-License-Identifier: MPL-2.0

// packmule is a package manager for script packages: it indexes
// repositories of package descriptors, resolves version-ranged
// dependencies, and runs install scripts in an embedded shell.
package main

func main() {
	Execute()
}
