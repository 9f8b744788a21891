package main

// opsrun - interactive front-end for running Ansible playbooks from a shared
// automation repository. Discovery, selection and the production confirmation
// gate live in internal packages; execution shells out to ansible-playbook.

import (
	"os"

	"opsrun/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
