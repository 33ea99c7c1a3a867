package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"github.com/urfave/cli/v3"

	"github.com/angelmondragon/storefront-backend/internal/admin"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/internal/catalog"
	"github.com/angelmondragon/storefront-backend/internal/orders"
	"github.com/angelmondragon/storefront-backend/internal/users"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	"github.com/angelmondragon/storefront-backend/pkg/security"
)

const tempPasswordLength = 16

func newApp(out io.Writer, open opener) *cli.Command {
	return &cli.Command{
		Name:   "storectl",
		Usage:  "storefront operator tasks",
		Writer: out,
		Commands: []*cli.Command{
			{
				Name:  "generate-keys",
				Usage: "print fresh session cookie keys for .env",
				Action: func(ctx context.Context, c *cli.Command) error {
					authKey := securecookie.GenerateRandomKey(32)
					encKey := securecookie.GenerateRandomKey(32)
					if authKey == nil || encKey == nil {
						return fmt.Errorf("random source unavailable")
					}
					fmt.Fprintf(out, "STOREFRONT_SESSION_AUTH_KEY=%s\n", hex.EncodeToString(authKey))
					fmt.Fprintf(out, "STOREFRONT_SESSION_ENCRYPTION_KEY=%s\n", hex.EncodeToString(encKey))
					return nil
				},
			},
			{
				Name:  "orders",
				Usage: "order maintenance",
				Commands: []*cli.Command{
					{
						Name:      "set-status",
						Usage:     "set processing, shipped or delivered on the given orders",
						ArgsUsage: "<order-id>...",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "status", Required: true, Usage: "processing|shipped|delivered"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							status, err := enums.ParseOrderStatus(c.String("status"))
							if err != nil {
								return err
							}
							ids, err := parseIDs(c.Args().Slice())
							if err != nil {
								return err
							}
							return withAdmin(ctx, open, func(svc admin.Service) error {
								result, err := svc.SetOrderStatus(ctx, orders.BulkStatusInput{OrderIDs: ids, Status: status.String()})
								if err != nil {
									return err
								}
								fmt.Fprintf(out, "updated %d orders to %s\n", result.Updated, result.Status)
								return nil
							})
						},
					},
				},
			},
			{
				Name:      "products",
				Usage:     "apply activate, deactivate, out_of_stock or duplicate to products",
				ArgsUsage: "<action> <product-id>...",
				Action: func(ctx context.Context, c *cli.Command) error {
					args := c.Args().Slice()
					if len(args) < 2 {
						return fmt.Errorf("usage: products <action> <product-id>...")
					}
					ids, err := parseIDs(args[1:])
					if err != nil {
						return err
					}
					return withAdmin(ctx, open, func(svc admin.Service) error {
						result, err := svc.ApplyProductAction(ctx, admin.ProductActionInput{Action: args[0], ProductIDs: ids})
						if err != nil {
							return err
						}
						fmt.Fprintf(out, "%s applied to %d products\n", result.Action, result.Affected)
						for _, created := range result.Created {
							fmt.Fprintf(out, "created %s %s\n", created.ID, created.Slug)
						}
						return nil
					})
				},
			},
			{
				Name:  "users",
				Usage: "account maintenance",
				Commands: []*cli.Command{
					{
						Name:  "create-staff",
						Usage: "create a staff account with a temporary password",
						Flags: []cli.Flag{
							&cli.StringFlag{Name: "email", Required: true},
							&cli.StringFlag{Name: "first-name"},
							&cli.StringFlag{Name: "last-name"},
						},
						Action: func(ctx context.Context, c *cli.Command) error {
							email := users.NormalizeEmail(c.String("email"))
							if email == "" {
								return fmt.Errorf("email required")
							}
							b, closeFn, err := open(ctx)
							if err != nil {
								return err
							}
							defer closeFn()

							password, err := security.GenerateTempPassword(tempPasswordLength)
							if err != nil {
								return err
							}
							hash, err := security.HashPassword(password, b.cfg.Password)
							if err != nil {
								return err
							}
							user, err := users.NewRepository(b.client.DB()).Create(ctx, users.CreateUserDTO{
								Email:        email,
								PasswordHash: hash,
								FirstName:    c.String("first-name"),
								LastName:     c.String("last-name"),
								IsStaff:      true,
							})
							if err != nil {
								return fmt.Errorf("create staff user: %w", err)
							}
							fmt.Fprintf(out, "created staff %s (%s)\ntemporary password: %s\n", user.Email, user.ID, password)
							return nil
						},
					},
				},
			},
		},
	}
}

func withAdmin(ctx context.Context, open opener, fn func(admin.Service) error) error {
	b, closeFn, err := open(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	conn := b.client.DB()
	ordersRepo := orders.NewRepository(conn)
	orderSvc, err := orders.NewService(ordersRepo, b.logg, nil)
	if err != nil {
		return err
	}
	catalogSvc, err := catalog.NewService(catalog.NewRepository(conn))
	if err != nil {
		return err
	}
	carts, err := cart.NewService(cart.ServiceParams{Repo: cart.NewRepository(conn), Tx: b.client, Logger: b.logg})
	if err != nil {
		return err
	}
	svc, err := admin.NewService(admin.ServiceParams{
		Orders:  ordersRepo,
		Status:  orderSvc,
		Catalog: catalogSvc,
		Carts:   carts,
		Logger:  b.logg,
	})
	if err != nil {
		return err
	}
	return fn(svc)
}

func parseIDs(raw []string) ([]uuid.UUID, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("at least one id required")
	}
	ids := make([]uuid.UUID, 0, len(raw))
	for _, value := range raw {
		id, err := uuid.Parse(strings.TrimSpace(value))
		if err != nil {
			return nil, fmt.Errorf("invalid id %q", value)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
