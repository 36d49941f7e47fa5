package main

import (
	"bufio"
	"bytes"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/lightningnetwork/lnd/zpay32"
	"github.com/urfave/cli/v2"

	"github.com/lnshout/shoutout/lnurl"
)

var payCommand = &cli.Command{
	Name:        "pay",
	Usage:       "pay a shoutout to an LNURL or lightning address",
	Description: "Resolves the pay request, attaches the comment and pays the returned invoice through lnd.",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "lnurl",
			Usage: "the LNURL, lnurlp:// link or lightning address to pay to",
		},
		&cli.Int64Flag{
			Name:  "amt",
			Usage: "the amount of millisats to pay",
		},
		&cli.StringFlag{
			Name:  "comment",
			Usage: "the shoutout text to attach",
		},
		&cli.Int64Flag{
			Name:  "maxfee",
			Usage: "max fee to pay for this payment (in millisats)",
			Value: 1000,
		},
		&cli.BoolFlag{
			Name:  "notls",
			Usage: "set to true to use http instead of https",
		},
		&cli.BoolFlag{
			Name:  "noop",
			Usage: "fetch and verify the invoice but do not pay it",
		},
	},
	Action: payShoutout,
}

func payShoutout(ctx *cli.Context) error {
	code := ctx.String("lnurl")
	if code == "" {
		return fmt.Errorf("missing '--lnurl' flag")
	}

	protocol := "https"
	if ctx.Bool("notls") {
		protocol = "http"
	}

	endpoint, err := resolveEndpoint(code, protocol)
	if err != nil {
		return err
	}
	if !ctx.Bool("notls") && !strings.HasPrefix(endpoint, "https") {
		return fmt.Errorf("url is not https")
	}

	var payRequest lnurl.PayRequest
	if err := get(endpoint, &payRequest); err != nil {
		return err
	}
	if payRequest.Tag != lnurl.TagPayRequest {
		return fmt.Errorf("expected a payRequest, got %q", payRequest.Tag)
	}

	// The metadata must carry a text/plain entry; its hash is what the
	// invoice commits to.
	var meta lnurl.Metadata
	if err := meta.Decode(payRequest.Metadata); err != nil {
		return fmt.Errorf("could not decode metadata: %w", err)
	}
	description, ok := meta.Entry(lnurl.MetadataPlainText)
	if !ok {
		return fmt.Errorf("response metadata does not contain the " +
			"required 'text/plain' field")
	}
	fmt.Printf("Paying to: %s\n", description)

	millisats, err := promptAmount(
		ctx.Int64("amt"),
		int64(payRequest.MinSendable), int64(payRequest.MaxSendable),
	)
	if err != nil {
		return err
	}

	comment := ctx.String("comment")
	if payRequest.CommentAllowed == 0 && comment != "" {
		return fmt.Errorf("this endpoint does not accept comments")
	}
	if len(comment) > payRequest.CommentAllowed {
		return fmt.Errorf("comment longer than the allowed %d "+
			"characters", payRequest.CommentAllowed)
	}

	delim := "?"
	if strings.Contains(payRequest.Callback, "?") {
		delim = "&"
	}
	callbackURL := fmt.Sprintf(
		"%s%samount=%d", payRequest.Callback, delim, millisats,
	)
	if comment != "" {
		callbackURL += "&comment=" + url.QueryEscape(comment)
	}

	var callback struct {
		lnurl.CallbackResponse
		Status string `json:"status"`
		Reason string `json:"reason"`
	}
	if err := get(callbackURL, &callback); err != nil {
		return err
	}
	if callback.Status == "ERROR" {
		return fmt.Errorf("service error: %s", callback.Reason)
	}

	invoice, err := zpay32.Decode(callback.PR, chainParams(ctx))
	if err != nil {
		return err
	}

	// The invoice description hash must match the metadata received
	// before.
	hash := lnurl.HashDescription(payRequest.Metadata)
	if invoice.DescriptionHash == nil ||
		!bytes.Equal(invoice.DescriptionHash[:], hash[:]) {

		return fmt.Errorf("invalid invoice description hash")
	}

	if ctx.Bool("noop") {
		fmt.Printf("Invoice verified:\n%s\n", callback.PR)
		return nil
	}

	lndClient, err := getLND(ctx)
	if err != nil {
		return fmt.Errorf("could not connect to LND: %w", err)
	}
	defer lndClient.Close()

	res := <-lndClient.Client.PayInvoice(
		ctx.Context, callback.PR,
		btcutil.Amount(ctx.Int64("maxfee")), nil,
	)
	if res.Err != nil {
		return fmt.Errorf("could not pay invoice: %w", res.Err)
	}

	fmt.Printf("Successful payment! Preimage: %s\n", res.Preimage)
	if action := callback.SuccessAction; action != nil {
		if action.Description != "" {
			fmt.Println(action.Description)
		}
		if action.URL != "" {
			fmt.Println(action.URL)
		}
	}
	return nil
}

// resolveEndpoint turns the supported input forms (bech32 LNURL, lightning:
// link, lnurlp:// link, lightning address) into the pay request URL.
func resolveEndpoint(code, protocol string) (string, error) {
	switch {
	case strings.HasPrefix(strings.ToUpper(code), "LNURL"):
		endpoint, err := lnurl.DecodeURL(code)
		if err != nil {
			return "", fmt.Errorf("error decoding LNURL: %w", err)
		}
		return endpoint, nil

	case strings.HasPrefix(code, "lightning:"):
		endpoint, err := lnurl.DecodeURL(
			strings.TrimPrefix(code, "lightning:"),
		)
		if err != nil {
			return "", fmt.Errorf("error decoding LNURL: %w", err)
		}
		return endpoint, nil

	case strings.HasPrefix(code, "lnurlp://"):
		return strings.Replace(code, "lnurlp", protocol, 1), nil

	case strings.Contains(code, "@"):
		parts := strings.Split(code, "@")
		if len(parts) != 2 {
			return "", fmt.Errorf("invalid lightning address, " +
				"expected the form <username>@<domain>")
		}
		return fmt.Sprintf(
			"%s://%s/.well-known/lnurlp/%s",
			protocol, parts[1], parts[0],
		), nil

	default:
		return "", fmt.Errorf("unsupported scheme")
	}
}

// promptAmount asks the user for a valid amount when the supplied one is
// missing or out of bounds.
func promptAmount(millisats, minSendable, maxSendable int64) (int64, error) {
	reader := bufio.NewReader(os.Stdin)
	for millisats < minSendable || millisats > maxSendable {
		fmt.Printf("Enter an amount (in millisatoshis) between "+
			"%d and %d\n", minSendable, maxSendable)

		userInput, err := reader.ReadString('\n')
		if err != nil {
			return 0, fmt.Errorf("could not read from console: %w",
				err)
		}

		millisats, err = strconv.ParseInt(
			strings.TrimSpace(userInput), 10, 64,
		)
		if err != nil {
			fmt.Printf("error parsing input: %v\n", err)
			continue
		}

		if millisats < minSendable || millisats > maxSendable {
			fmt.Printf("Invalid amount. Expected an amount "+
				"between %d and %d, got %d\n", minSendable,
				maxSendable, millisats)
		}
	}
	return millisats, nil
}

func chainParams(ctx *cli.Context) *chaincfg.Params {
	switch ctx.String("network") {
	case "mainnet":
		return &chaincfg.MainNetParams
	case "testnet":
		return &chaincfg.TestNet3Params
	case "simnet":
		return &chaincfg.SimNetParams
	default:
		return &chaincfg.RegressionNetParams
	}
}
