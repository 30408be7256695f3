// Command adminguard-cred provisions admin credentials for an adminguard
// deployment: it mints a PBKDF2 descriptor for the configured password and,
// on request, a fresh TOTP secret with its otpauth:// enrollment URI.
//
// Usage:
//
//	adminguard-cred -password 'correct-horse'
//	adminguard-cred -password 'correct-horse' -totp -issuer ops -account admin@example.com
//
// The descriptor goes into Config.Credential.Descriptor; the TOTP secret into
// Config.TOTP.Secret. Neither the password nor the secret is stored anywhere
// by this tool.
package main

import (
	"flag"
	"fmt"
	"os"

	adminguard "github.com/hexbyte/adminguard"
	"github.com/hexbyte/adminguard/password"
)

func main() {
	var (
		pw      = flag.String("password", "", "admin password to hash (required)")
		totp    = flag.Bool("totp", false, "also generate a TOTP secret and enrollment URI")
		issuer  = flag.String("issuer", "adminguard", "issuer label for the enrollment URI")
		account = flag.String("account", "admin", "account label for the enrollment URI")
	)
	flag.Parse()

	if *pw == "" {
		fmt.Fprintln(os.Stderr, "-password is required")
		flag.Usage()
		os.Exit(2)
	}

	descriptor, err := password.HashPBKDF2(*pw)
	if err != nil {
		fmt.Fprintln(os.Stderr, "hash:", err)
		os.Exit(1)
	}
	fmt.Println("descriptor:", descriptor)

	if !*totp {
		return
	}

	secret, err := adminguard.GenerateTOTPSecret()
	if err != nil {
		fmt.Fprintln(os.Stderr, "totp secret:", err)
		os.Exit(1)
	}
	fmt.Println("totp secret:", secret)

	fmt.Println("enrollment uri:", adminguard.ProvisionURIFor(secret, *issuer, *account))
}
