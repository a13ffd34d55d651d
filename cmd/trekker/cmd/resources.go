package cmd

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/jrsteele09/trekker-client/blog"
	"github.com/jrsteele09/trekker-client/hotels"
	"github.com/jrsteele09/trekker-client/tours"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

var (
	filters  map[string]string
	jsonBody string
)

type resourceCall func(ctx context.Context, a *app, args []string) (json.RawMessage, error)

// resourceCmd builds a leaf command that prints the JSON answer of call.
func resourceCmd(use, short string, args cobra.PositionalArgs, call resourceCall) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app) error {
				out, err := call(cmd.Context(), a, args)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), out)
			})
		},
	}
}

func withFilters(c *cobra.Command) *cobra.Command {
	c.Flags().StringToStringVar(&filters, "filter", nil, "query filter, as key=value (repeatable)")
	return c
}

func withBody(c *cobra.Command) *cobra.Command {
	c.Flags().StringVar(&jsonBody, "data", "", "request body as a JSON object")
	_ = c.MarkFlagRequired("data")
	return c
}

func filterValues() url.Values {
	if len(filters) == 0 {
		return nil
	}
	v := make(url.Values, len(filters))
	for k, f := range filters {
		v.Set(k, f)
	}
	return v
}

func body() (json.RawMessage, error) {
	if !json.Valid([]byte(jsonBody)) {
		return nil, errors.New("--data is not valid JSON")
	}
	return json.RawMessage(jsonBody), nil
}

var blogCmd = &cobra.Command{Use: "blog", Short: "Blog posts and comments"}
var hotelsCmd = &cobra.Command{Use: "hotels", Short: "Hotels, rooms and reservations"}
var toursCmd = &cobra.Command{Use: "tours", Short: "Tours and bookings"}

func init() {
	blogCmd.AddCommand(
		resourceCmd("categories", "List categories", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			return blog.New(a.api).Categories(ctx)
		}),
		withFilters(resourceCmd("posts", "List posts", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			return blog.New(a.api).Posts(ctx, filterValues())
		})),
		resourceCmd("post <slug>", "Show a post", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return blog.New(a.api).Post(ctx, args[0])
		}),
		resourceCmd("search <query>", "Search posts", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return blog.New(a.api).SearchPosts(ctx, args[0])
		}),
		withBody(resourceCmd("create", "Create a post", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			b, err := body()
			if err != nil {
				return nil, err
			}
			return blog.New(a.api).CreatePost(ctx, b)
		})),
		withBody(resourceCmd("update <slug>", "Update a post", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			b, err := body()
			if err != nil {
				return nil, err
			}
			return blog.New(a.api).UpdatePost(ctx, args[0], b)
		})),
		resourceCmd("delete <slug>", "Delete a post", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return blog.New(a.api).DeletePost(ctx, args[0])
		}),
		resourceCmd("like <slug>", "Toggle a like on a post", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return blog.New(a.api).LikePost(ctx, args[0])
		}),
		resourceCmd("mine", "List my posts", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			return blog.New(a.api).MyPosts(ctx)
		}),
		resourceCmd("comments <slug>", "List comments of a post", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return blog.New(a.api).Comments(ctx, args[0])
		}),
		withBody(resourceCmd("comment", "Add a comment", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			b, err := body()
			if err != nil {
				return nil, err
			}
			return blog.New(a.api).CreateComment(ctx, b)
		})),
	)

	hotelsCmd.AddCommand(
		withFilters(resourceCmd("list", "List hotels", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			return hotels.New(a.api).Hotels(ctx, filterValues())
		})),
		resourceCmd("show <id>", "Show a hotel", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return hotels.New(a.api).Hotel(ctx, args[0])
		}),
		resourceCmd("rooms <hotel-id>", "List rooms of a hotel", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return hotels.New(a.api).HotelRooms(ctx, args[0])
		}),
		resourceCmd("search <query>", "Search hotels", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return hotels.New(a.api).SearchHotels(ctx, args[0])
		}),
		withFilters(resourceCmd("all-rooms", "List rooms across hotels", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			return hotels.New(a.api).Rooms(ctx, filterValues())
		})),
		withBody(resourceCmd("reserve", "Create a reservation", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			b, err := body()
			if err != nil {
				return nil, err
			}
			return hotels.New(a.api).CreateReservation(ctx, b)
		})),
		resourceCmd("reservations", "List my reservations", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			return hotels.New(a.api).MyReservations(ctx)
		}),
		resourceCmd("cancel <reservation-id>", "Cancel a reservation", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return hotels.New(a.api).CancelReservation(ctx, args[0])
		}),
	)

	toursCmd.AddCommand(
		withFilters(resourceCmd("list", "List tours", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			return tours.New(a.api).Tours(ctx, filterValues())
		})),
		resourceCmd("show <id>", "Show a tour", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return tours.New(a.api).Tour(ctx, args[0])
		}),
		resourceCmd("search <query>", "Search tours", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return tours.New(a.api).SearchTours(ctx, args[0])
		}),
		withBody(resourceCmd("book", "Book a tour", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			b, err := body()
			if err != nil {
				return nil, err
			}
			return tours.New(a.api).CreateBooking(ctx, b)
		})),
		resourceCmd("bookings", "List my bookings", cobra.NoArgs, func(ctx context.Context, a *app, _ []string) (json.RawMessage, error) {
			return tours.New(a.api).MyBookings(ctx)
		}),
		resourceCmd("cancel <booking-id>", "Cancel a booking", cobra.ExactArgs(1), func(ctx context.Context, a *app, args []string) (json.RawMessage, error) {
			return tours.New(a.api).CancelBooking(ctx, args[0])
		}),
	)

	rootCmd.AddCommand(blogCmd, hotelsCmd, toursCmd)
}
