package cmd

import (
	"time"

	"github.com/atinyakov/inventory/internal/certgen"
	"github.com/spf13/cobra"
)

var devcertCmd = &cobra.Command{
	Use:   "devcert",
	Short: "Write a self-signed TLS certificate for local HTTPS",
	Long: `Generates a self-signed server certificate and key. Point TLS_CERT_FILE and
TLS_KEY_FILE at the written files to serve the API over HTTPS.`,
	// No database needed.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		hosts, _ := flags.GetStringSlice("host")
		certPath, _ := flags.GetString("cert")
		keyPath, _ := flags.GetString("key")
		validFor, _ := flags.GetDuration("valid-for")

		certPEM, keyPEM, err := certgen.GenerateServerCertificate(hosts, validFor)
		if err != nil {
			return err
		}
		if err := certgen.WriteFiles(certPath, keyPath, certPEM, keyPEM); err != nil {
			return err
		}
		cmd.Printf("Wrote %s and %s\n", certPath, keyPath)
		return nil
	},
}

func init() {
	devcertCmd.Flags().StringSlice("host", []string{"localhost", "127.0.0.1"}, "Hostnames or IPs the certificate is valid for")
	devcertCmd.Flags().String("cert", "certs/server.crt", "Certificate output path")
	devcertCmd.Flags().String("key", "certs/server.key", "Private key output path")
	devcertCmd.Flags().Duration("valid-for", 365*24*time.Hour, "Certificate lifetime")
	rootCmd.AddCommand(devcertCmd)
}
