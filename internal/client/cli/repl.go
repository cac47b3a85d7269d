package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	isAdmin() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Status(ctx context.Context) error
	Generate(ctx context.Context, path string) error
	Upgrade(ctx context.Context, tier string) error
	Admin(ctx context.Context, args []string) error
}

// runREPL reads commands from reader until EOF, "exit" or "quit" and
// dispatches them to a. The prompt shows statusFn.
//
//	Not logged in:
//	  - help | register | login | admin | exit
//
//	Logged in:
//	  - help | status | generate <path> | upgrade vip|svip | admin | logout | exit
//
// Handler errors are printed and the loop continues. Handlers read their
// own prompts from the same reader.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("sora %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			switch {
			case a.isLoggedIn():
				printlnFn("Available commands: status, generate <path>, upgrade vip|svip, admin, logout, exit")
			case a.isAdmin():
				printlnFn("Available commands: generate <path>, admin [users|exit], login, exit")
			default:
				printlnFn("Available commands: register, login, admin, exit")
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = a.Logout(ctx)

		case "status":
			cmdErr = a.Status(ctx)

		case "generate":
			cmdErr = a.Generate(ctx, strings.Join(args, " "))

		case "upgrade":
			tier := ""
			if len(args) > 0 {
				tier = args[0]
			}
			cmdErr = a.Upgrade(ctx, tier)

		case "admin":
			cmdErr = a.Admin(ctx, args)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if cmdErr != nil {
			printlnFn("Error:", cmdErr)
		}
	}
}
