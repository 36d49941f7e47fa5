// Package lnd implements the lightning client port against an lnd node
// through lndclient.
package lnd

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/lightninglabs/lndclient"
	"github.com/lightningnetwork/lnd/invoices"
	"github.com/lightningnetwork/lnd/lnrpc/invoicesrpc"
	"github.com/lightningnetwork/lnd/lntypes"
	log "github.com/sirupsen/logrus"

	"github.com/lnshout/shoutout/internal/ports"
)

type Config struct {
	Address     string
	Network     lndclient.Network
	MacaroonDir string
	TLSPath     string
}

type Client struct {
	services *lndclient.GrpcLndServices
}

var _ ports.LightningClient = (*Client)(nil)

func NewClient(cfg Config) (*Client, error) {
	services, err := lndclient.NewLndServices(&lndclient.LndServicesConfig{
		LndAddress:  cfg.Address,
		Network:     cfg.Network,
		MacaroonDir: cfg.MacaroonDir,
		TLSPath:     cfg.TLSPath,
	})
	if err != nil {
		return nil, fmt.Errorf("could not connect to lnd: %w", err)
	}

	info, err := services.Client.GetInfo(context.Background())
	if err != nil {
		return nil, fmt.Errorf("could not reach lnd: %w", err)
	}
	log.WithField("alias", info.Alias).Info("connected to lightning node")

	return &Client{services: services}, nil
}

func (c *Client) CreateInvoice(ctx context.Context, params ports.CreateInvoiceParams) (*ports.LightningInvoice, error) {
	data := &invoicesrpc.AddInvoiceData{
		Value:  params.Value,
		Expiry: int64(params.Expiry.Seconds()),
	}
	if params.DescriptionHashOnly {
		hash := sha256.Sum256([]byte(params.Memo))
		data.DescriptionHash = hash[:]
	} else {
		data.Memo = params.Memo
	}

	hash, payReq, err := c.services.Client.AddInvoice(ctx, data)
	if err != nil {
		return nil, err
	}

	return &ports.LightningInvoice{
		BOLT11:      payReq,
		ID:          hash.String(),
		PaymentHash: hash.String(),
	}, nil
}

func (c *Client) LookupInvoice(ctx context.Context, paymentHash string) (*ports.LightningInvoiceState, error) {
	hash, err := lntypes.MakeHashFromStr(paymentHash)
	if err != nil {
		return nil, fmt.Errorf("invalid payment hash: %w", err)
	}

	invoice, err := c.services.Client.LookupInvoice(ctx, hash)
	if err != nil {
		return nil, err
	}

	state := &ports.LightningInvoiceState{
		Settled:    invoice.State == invoices.ContractSettled,
		AmountPaid: invoice.AmountPaid,
	}
	if invoice.Preimage != nil {
		state.Preimage = invoice.Preimage.String()
	}
	return state, nil
}

func (c *Client) Close() {
	c.services.Close()
}
