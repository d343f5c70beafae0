package main

import (
	"context"
	"fmt"
	"github.com/ariefcatur/go-bookstore-carts/internal/directory"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// client bicara protokol status-string ("0|..." / "1|...") ke cart-api.
type client struct {
	base string
	http *http.Client
}

func (c *client) call(ctx context.Context, path string, q url.Values, header http.Header) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(c.base, "/")+path+"?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// emit menulis reply apa adanya; exit code 1 kalau reply gagal.
func emit(cmd *cobra.Command, reply string) error {
	fmt.Fprintln(cmd.OutOrStdout(), reply)
	if !strings.HasPrefix(reply, "0|") {
		return fmt.Errorf("request failed: %s", strings.TrimPrefix(reply, "1|"))
	}
	return nil
}

func newRootCmd() *cobra.Command {
	c := &client{http: &http.Client{Timeout: 15 * time.Second}}

	root := &cobra.Command{
		Use:           "cartctl",
		Short:         "Command line client for the bookstore cart API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.base, "addr", envOr("CART_API_ADDR", "http://localhost:8081"), "cart API base URL")

	root.AddCommand(&cobra.Command{
		Use:   "create-cart <clientId> <password>",
		Short: "Create a cart for a registered client",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := c.call(cmd.Context(), "/createCart", url.Values{"clientId": {args[0]}, "password": {args[1]}}, nil)
			if err != nil {
				return err
			}
			return emit(cmd, reply)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "add <cartId> <isbn> <quantity>",
		Short: "Add copies of a book to a cart",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := strconv.Atoi(args[2]); err != nil {
				return fmt.Errorf("quantity must be an integer: %q", args[2])
			}
			reply, err := c.call(cmd.Context(), "/addToCart", url.Values{
				"cartId": {args[0]}, "bookIsbn": {args[1]}, "bookQuantity": {args[2]},
			}, nil)
			if err != nil {
				return err
			}
			return emit(cmd, reply)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list <cartId>",
		Short: "List the contents of a cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reply, err := c.call(cmd.Context(), "/listCart", url.Values{"cartId": {args[0]}}, nil)
			if err != nil {
				return err
			}
			return emit(cmd, reply)
		},
	})

	var ccn, cced, cco, idemKey string
	checkout := &cobra.Command{
		Use:   "checkout <cartId>",
		Short: "Check out a cart with a credit card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if idemKey == "" {
				idemKey = uuid.NewString()
			}
			reply, err := c.call(cmd.Context(), "/checkOutCart", url.Values{
				"cartId": {args[0]}, "ccn": {ccn}, "cced": {cced}, "cco": {cco},
			}, http.Header{"Idempotency-Key": {idemKey}})
			if err != nil {
				return err
			}
			return emit(cmd, reply)
		},
	}
	checkout.Flags().StringVar(&ccn, "ccn", "", "credit card number")
	checkout.Flags().StringVar(&cced, "cced", "", "credit card expiration (MMYYYY)")
	checkout.Flags().StringVar(&cco, "cco", "", "credit card owner")
	checkout.Flags().StringVar(&idemKey, "idempotency-key", "", "reuse a key to retry safely (random if empty)")
	_ = checkout.MarkFlagRequired("ccn")
	_ = checkout.MarkFlagRequired("cced")
	_ = checkout.MarkFlagRequired("cco")
	root.AddCommand(checkout)

	root.AddCommand(&cobra.Command{
		Use:   "hash-password <password>",
		Short: "Print a bcrypt hash for the users table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			h, err := directory.Hash(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), h)
			return nil
		},
	})

	return root
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
