package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dalnet/tinyircd/internal/probe"
)

func main() {
	server := flag.String("s", "localhost:6667", "Server address")
	nick := flag.String("n", "probe", "Nickname to register with")
	channel := flag.String("j", "", "Channel to join")
	message := flag.String("m", "", "Message to send to the joined channel")
	timeout := flag.Duration("t", 10*time.Second, "Give up after this long")
	debug := flag.Bool("d", false, "Log protocol traffic")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report, err := probe.Run(ctx, probe.Options{
		Server:  *server,
		Nick:    *nick,
		Channel: *channel,
		Message: *message,
		Debug:   *debug,
	})

	fmt.Printf("welcome: %s\n", report.Welcome)
	fmt.Printf("lusers:  %s\n", report.Luser)
	if *channel != "" {
		fmt.Printf("joined:  %t\n", report.Joined)
	}

	if err != nil {
		log.Printf("Probe failed: %v", err)
		os.Exit(1)
	}
}
