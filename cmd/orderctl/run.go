package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/polkiloo/uniformorders/internal/adapter/orderapi"
	domainErrors "github.com/polkiloo/uniformorders/internal/domain/errors"
	"github.com/polkiloo/uniformorders/internal/domain/model"
	"github.com/polkiloo/uniformorders/internal/lifecycle"
	"github.com/polkiloo/uniformorders/internal/server/http/dto"
)

const usage = `usage: orderctl [-server URL] [-token TOKEN] <command> [args]

commands:
  get <order-id>
  list [-status STATUS] [-user USER-ID]
  status <order-id> <STATUS>
  verify <order-id> [RECEIPT-TYPE]
  reject <order-id> <reason>
  schedule <order-id> <YYYY-MM-DD> <HH:MM>
`

const (
	exitOK = iota
	exitFailure
	exitUsage
)

var errUsage = errors.New("invalid usage")

type cli struct {
	client *orderapi.HTTPClient
	stdout io.Writer
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("orderctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	server := fs.String("server", envOr("ORDERCTL_SERVER", "http://localhost:8080"), "Order service base URL")
	token := fs.String("token", os.Getenv("ORDERCTL_TOKEN"), "Bearer token of a staff account")
	if err := fs.Parse(args); err != nil || fs.NArg() == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	client, err := orderapi.NewHTTPClient(*server, *token, logger)
	if err != nil {
		fmt.Fprintf(stderr, "orderctl: %v\n", err)
		return exitUsage
	}

	c := &cli{client: client, stdout: stdout}
	command, rest := fs.Arg(0), fs.Args()[1:]

	switch command {
	case "get":
		err = c.get(ctx, rest)
	case "list":
		err = c.list(ctx, rest)
	case "status", "verify", "reject", "schedule":
		err = c.act(ctx, command, rest)
	default:
		err = errUsage
	}

	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, errUsage):
		fmt.Fprint(stderr, usage)
		return exitUsage
	default:
		fmt.Fprintf(stderr, "orderctl: %s\n", domainErrors.Message(err))
		logger.Debug("command failed", slog.String("command", command), slog.String("error", err.Error()))
		return exitFailure
	}
}

func (c *cli) get(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	order, err := c.client.FetchOrder(ctx, args[0])
	if err != nil {
		return err
	}
	return c.print(dto.FromOrder(*order))
}

func (c *cli) list(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	rawStatus := fs.String("status", "", "Only orders in this status")
	userID := fs.Int64("user", 0, "Only orders of this user")
	if err := fs.Parse(args); err != nil || fs.NArg() != 0 {
		return errUsage
	}

	var (
		orders []model.Order
		err    error
	)
	if *userID > 0 {
		orders, err = c.client.FetchOrdersForUser(ctx, *userID)
	} else {
		var status *model.OrderStatus
		if *rawStatus != "" {
			parsed, perr := model.ParseOrderStatus(strings.ToUpper(*rawStatus))
			if perr != nil {
				return domainErrors.NewValidationError(perr.Error())
			}
			status = &parsed
		}
		orders, err = c.client.ListOrders(ctx, status)
	}
	if err != nil {
		return err
	}
	return c.print(dto.FromOrders(orders))
}

// act runs one lifecycle action through a Controller over the remote
// collaborator. The server enforces the caller's real capabilities.
func (c *cli) act(ctx context.Context, command string, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	order, err := c.client.FetchOrder(ctx, args[0])
	if err != nil {
		return err
	}
	controller := lifecycle.NewController(*order, c.client, model.FullCapabilities)
	args = args[1:]

	var updated model.Order
	switch command {
	case "status":
		if len(args) != 1 {
			return errUsage
		}
		updated, err = controller.ChangeStatus(ctx, model.OrderStatus(strings.ToUpper(args[0])))
	case "verify":
		switch len(args) {
		case 0:
			updated, err = controller.VerifyReceipt(ctx)
		case 1:
			updated, err = controller.VerifyPayment(ctx, model.ReceiptType(strings.ToUpper(args[0])))
		default:
			return errUsage
		}
	case "reject":
		if len(args) == 0 {
			return errUsage
		}
		updated, err = controller.Reject(ctx, strings.Join(args, " "))
	case "schedule":
		if len(args) != 2 {
			return errUsage
		}
		updated, err = controller.ScheduleMeasurement(ctx, model.MeasurementSchedule{Date: args[0], Time: args[1]})
	}

	var conflict *domainErrors.ConflictError
	if errors.As(err, &conflict) {
		if aerr := controller.Adopt(conflict.Current); aerr == nil {
			_ = c.print(dto.FromOrder(controller.Order()))
		}
	}
	if err != nil {
		return err
	}
	return c.print(dto.FromOrder(updated))
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
