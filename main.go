package main

import "github.com/namvh1209/posture-cli/cmd"

// execCmd is indirected so main stays testable.
var execCmd = cmd.Execute

func main() {
	execCmd()
}
