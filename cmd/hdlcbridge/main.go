package main

import (
	"flag"

	"github.com/golang/glog"

	"github.com/gopherlink/hdlc/cmd/hdlcbridge/cmd"
)

func main() {
	flag.Parse()
	defer glog.Flush()

	cmd.Execute()
}
