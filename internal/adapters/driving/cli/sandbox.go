package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/kycup/internal/adapters/driving/sandbox"
	"github.com/custodia-labs/kycup/internal/core/domain"
)

var (
	sandboxAddr        string
	sandboxDir         string
	sandboxToken       string
	sandboxUser        string
	sandboxKyc         string
	sandboxForceStatus int
	sandboxDelay       time.Duration
	sandboxVerify      bool
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Run a local KYC endpoint for testing",
	Long: `Run a local server implementing the upload and user endpoints.

Uploaded files are stored under --dir, one directory per submission.
Use --force-status to answer every upload with an error status and
--delay to exercise the upload timeout.`,
	Example: `  kycup sandbox --addr 127.0.0.1:8080
  kycup sandbox --addr auto --force-status 502
  kycup settings set api.base_url http://127.0.0.1:8080`,
	Annotations: map[string]string{noServices: "true"},
	Args:        cobra.NoArgs,
	RunE:        runSandbox,
}

func init() {
	sandboxCmd.Flags().StringVar(&sandboxAddr, "addr", "127.0.0.1:8080", "listen address, or auto for the first free port from 8080")
	sandboxCmd.Flags().StringVar(&sandboxDir, "dir", "", "directory for received files (default a temp dir)")
	sandboxCmd.Flags().StringVar(&sandboxToken, "token", "", "require this bearer token")
	sandboxCmd.Flags().StringVar(&sandboxUser, "user", "sandbox", "username reported by the user endpoint")
	sandboxCmd.Flags().StringVar(&sandboxKyc, "kyc", "unverified", "initial KYC status: unknown, unverified, pending or verified")
	sandboxCmd.Flags().IntVar(&sandboxForceStatus, "force-status", 0, "answer every upload with this HTTP status")
	sandboxCmd.Flags().DurationVar(&sandboxDelay, "delay", 0, "delay before answering an upload")
	sandboxCmd.Flags().BoolVar(&sandboxVerify, "verify", false, "mark the user verified after an upload")
	rootCmd.AddCommand(sandboxCmd)
}

func runSandbox(cmd *cobra.Command, _ []string) error {
	kyc, err := parseKycStatus(sandboxKyc)
	if err != nil {
		return err
	}

	cfg := sandbox.Config{
		Dir:            sandboxDir,
		Token:          sandboxToken,
		Username:       sandboxUser,
		Kyc:            kyc,
		ForceStatus:    sandboxForceStatus,
		Delay:          sandboxDelay,
		VerifyOnUpload: sandboxVerify,
	}
	if verbose {
		cfg.AccessLog = cmd.ErrOrStderr()
	}

	srv, err := sandbox.NewServer(cfg)
	if err != nil {
		return err
	}

	addr := sandboxAddr
	if addr == "auto" {
		if addr, err = sandbox.FreeAddr(sandbox.FirstPort, sandbox.LastPort); err != nil {
			return err
		}
	}

	cmd.Printf("Sandbox listening on http://%s\n", addr)
	cmd.Printf("Storing submissions in %s\n", srv.Dir())
	return srv.Run(cmd.Context(), addr)
}

func parseKycStatus(s string) (domain.KycStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unknown", "":
		return domain.KycUnknown, nil
	case "unverified", "0":
		return domain.KycUnverified, nil
	case "pending", "1":
		return domain.KycPending, nil
	case "verified", "2":
		return domain.KycVerified, nil
	}
	return domain.KycUnknown, fmt.Errorf("%w: unknown kyc status %q", domain.ErrInvalidInput, s)
}
