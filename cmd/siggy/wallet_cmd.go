package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/siggy-land/siggy/internal/eth"
)

func walletCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wallet",
		Short: "Wallet helpers for local testing",
	}

	var key, message string
	var compact bool
	sign := &cobra.Command{
		Use:   "sign",
		Short: "Sign a challenge message the way personal_sign does",
		RunE: func(cmd *cobra.Command, args []string) error {
			return signMessage(cmd, key, message, compact)
		},
	}
	sign.Flags().StringVar(&key, "key", "", "hex private key")
	sign.Flags().StringVar(&message, "message", "", "message to sign")
	sign.Flags().BoolVar(&compact, "compact", false, "print the 64-byte EIP-2098 signature")
	_ = sign.MarkFlagRequired("key")
	_ = sign.MarkFlagRequired("message")

	cmd.AddCommand(sign)
	return cmd
}

func signMessage(cmd *cobra.Command, key, message string, compact bool) error {
	priv, err := eth.ParsePrivateKey(key)
	if err != nil {
		return err
	}

	sig, err := eth.SignMessage(priv, message)
	if err != nil {
		return err
	}
	if compact {
		if sig, err = eth.CompactSignature(sig); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "address:   %s\n", eth.AddressOf(priv).Hex())
	fmt.Fprintf(out, "signature: %s\n", sig)
	return nil
}
