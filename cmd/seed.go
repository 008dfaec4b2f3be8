package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"kargo/internal/adapters/out/postgres"
	"kargo/internal/core/application/usecases/commands"
	"kargo/internal/core/domain/model/kernel"
	"kargo/internal/pkg/auth"

	"github.com/jaswdr/faker"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

type orderCreator interface {
	Handle(ctx context.Context, cmd commands.CreateOrderCommand) error
}

type SeedOptions struct {
	Orders    int
	Customers int
	Couriers  int
	TokenTTL  time.Duration
	Secret    string
}

// SeedIdentity is a development user with a ready-to-use bearer token.
type SeedIdentity struct {
	Role   kernel.Role
	UserID kernel.UUID
	Token  string
}

type SeedResult struct {
	Identities []SeedIdentity
	OrderIDs   []kernel.UUID
}

func newSeedCommand(a *app) *cobra.Command {
	opts := SeedOptions{}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the store with fake pending orders and print development tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.cfg.RequireSecret(); err != nil {
				return err
			}
			opts.Secret = a.cfg.JWTSecret

			db, err := OpenDatabase(a.cfg, a.logger)
			if err != nil {
				return err
			}
			if err := postgres.Migrate(db); err != nil {
				return err
			}

			root, err := NewCompositionRoot(a.cfg, db, a.logger)
			if err != nil {
				return err
			}
			defer func() { _ = root.Close() }()

			handler := root.CreateCreateOrderCommandHandler()
			result, err := Seed(cmd.Context(), &handler, opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return PrintIdentities(a.stdout, result.Identities)
		},
	}
	cmd.Flags().IntVar(&opts.Orders, "orders", 25, "number of orders to create")
	cmd.Flags().IntVar(&opts.Customers, "customers", 3, "number of customers the orders are spread over")
	cmd.Flags().IntVar(&opts.Couriers, "couriers", 2, "number of courier identities to issue")
	cmd.Flags().DurationVar(&opts.TokenTTL, "token-ttl", 24*time.Hour, "lifetime of the printed tokens")

	return cmd
}

// Seed creates one business, opts.Customers customers, opts.Couriers couriers
// and an admin, then opts.Orders pending orders from the business to the
// customers in turn. Progress is drawn on progress.
func Seed(ctx context.Context, creator orderCreator, opts SeedOptions, progress io.Writer) (SeedResult, error) {
	if opts.Customers <= 0 {
		opts.Customers = 1
	}

	var result SeedResult
	issue := func(role kernel.Role) (SeedIdentity, error) {
		id := SeedIdentity{Role: role, UserID: kernel.NewUUID()}
		token, err := auth.Sign(auth.Principal{UserID: id.UserID, Role: role}, opts.Secret, opts.TokenTTL, time.Now())
		if err != nil {
			return SeedIdentity{}, err
		}
		id.Token = token
		result.Identities = append(result.Identities, id)
		return id, nil
	}

	business, err := issue(kernel.RoleBusiness)
	if err != nil {
		return SeedResult{}, err
	}
	customers := make([]SeedIdentity, 0, opts.Customers)
	for range opts.Customers {
		c, err := issue(kernel.RoleCustomer)
		if err != nil {
			return SeedResult{}, err
		}
		customers = append(customers, c)
	}
	for range opts.Couriers {
		if _, err := issue(kernel.RoleCourier); err != nil {
			return SeedResult{}, err
		}
	}
	if _, err := issue(kernel.RoleAdmin); err != nil {
		return SeedResult{}, err
	}

	fake := faker.New()
	bar := progressbar.NewOptions(opts.Orders,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription("seeding orders"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	for i := range opts.Orders {
		orderID := kernel.NewUUID()
		cmd, err := commands.NewCreateOrderCommand(orderID, business.UserID, customers[i%len(customers)].UserID,
			fakeAddress(fake), fakeAddress(fake), fakeParcel(fake), 0)
		if err != nil {
			return SeedResult{}, err
		}
		if err := creator.Handle(ctx, cmd); err != nil {
			return SeedResult{}, fmt.Errorf("seed order %d: %w", i+1, err)
		}
		result.OrderIDs = append(result.OrderIDs, orderID)
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	return result, nil
}

// fakeAddress places points inside Istanbul; every third one is left without
// coordinates so the geocoding job has work.
func fakeAddress(fake faker.Faker) commands.AddressInput {
	in := commands.AddressInput{
		Text:  fmt.Sprintf("%s, %s", fake.Address().StreetAddress(), fake.Address().City()),
		Phone: fake.Phone().Number(),
	}
	if fake.IntBetween(1, 3) == 3 {
		return in
	}
	lat := 40.95 + fake.Float64(4, 0, 1)/10
	lng := 28.85 + fake.Float64(4, 0, 1)/2
	in.Latitude, in.Longitude = &lat, &lng
	return in
}

func fakeParcel(fake faker.Faker) commands.ParcelInput {
	weight := fake.Float64(1, 1, 20)
	value := int64(fake.IntBetween(50, 5000)) * 100
	return commands.ParcelInput{
		Description:   fake.Lorem().Sentence(4),
		WeightKg:      &weight,
		DeclaredValue: &value,
	}
}

func PrintIdentities(w io.Writer, ids []SeedIdentity) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ROLE\tUSER ID\tTOKEN")
	for _, id := range ids {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", id.Role, id.UserID, id.Token)
	}
	return tw.Flush()
}
