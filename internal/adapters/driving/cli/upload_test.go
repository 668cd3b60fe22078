package cli

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/kycup/internal/core/domain"
)

func uploadArgs(extra ...string) []string {
	args := []string{"upload", "--front", "front.jpg", "--back", "back.jpg", "--selfie", "selfie.png"}
	return append(args, extra...)
}

func TestUploadCmd_Flags(t *testing.T) {
	flag := uploadCmd.Flags().Lookup("type")
	require.NotNil(t, flag)
	assert.Equal(t, "t", flag.Shorthand)
	assert.Equal(t, "drivers-license", flag.DefValue)

	for _, name := range []string{"front", "back", "selfie", "plain", "auto-retry"} {
		assert.NotNil(t, uploadCmd.Flags().Lookup(name), name)
	}
}

func TestUploadCmd_RequiresFiles(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("upload", "--front", "front.jpg")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "required flag(s)")
}

func TestUploadCmd_Success(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.pipeline.status = domain.KycUnverified

	out, err := execute(uploadArgs("--type", "passport")...)

	require.NoError(t, err)
	assert.Equal(t, domain.DocumentPassport, env.pipeline.Snapshot().DocumentType)
	assert.Equal(t, []string{"front.jpg", "back.jpg", "selfie.png"}, env.loader.paths)
	assert.Equal(t, 1, env.pipeline.submits)
	assert.True(t, env.pipeline.closed)

	assert.Contains(t, out, "Compressing images...")
	assert.Contains(t, out, "4.1 kB -> 2.0 kB")
	assert.Contains(t, out, "Uploading... 0%")
	assert.Contains(t, out, "Uploading... 100%")
	assert.Contains(t, out, "Documents uploaded successfully (attempt 1, 3.1 kB in 1.5s).")
	assert.Contains(t, out, "KYC status: ")
}

func TestUploadCmd_VerifiedMakesNoUpload(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.pipeline.status = domain.KycVerified

	out, err := execute(uploadArgs()...)

	require.NoError(t, err)
	assert.Contains(t, out, "Your KYC has been verified.")
	assert.Empty(t, env.loader.paths)
	assert.Zero(t, env.pipeline.submits)
}

func TestUploadCmd_InvalidType(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(uploadArgs("--type", "library-card")...)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUploadCmd_MissingFile(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()

	_, err := execute("upload", "--front", "front.jpg", "--back", "missing.jpg", "--selfie", "s.jpg")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "back")
	assert.Zero(t, env.pipeline.submits)
}

func TestUploadCmd_FailureWithoutAutoRetry(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.pipeline.outcomes = []error{
		domain.NewUploadFailure(domain.ErrServerError, 502, domain.MsgServerError),
	}

	out, err := execute(uploadArgs()...)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrServerError)
	assert.Contains(t, out, "Upload failed: "+domain.MsgServerError)
	assert.Contains(t, out, "--auto-retry")
	assert.Equal(t, 1, env.pipeline.submits)
	assert.Zero(t, env.pipeline.retries)
}

func TestUploadCmd_AutoRetrySucceeds(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.pipeline.outcomes = []error{
		domain.NewUploadFailure(domain.ErrConnectivityLost, 0, domain.MsgConnectivityLost),
	}

	out, err := execute(uploadArgs("--auto-retry")...)

	require.NoError(t, err)
	assert.Contains(t, out, "Retrying upload (2/3)...")
	assert.Contains(t, out, "attempt 2")
	assert.Equal(t, 1, env.pipeline.retries)
}

func TestUploadCmd_AutoRetryExhausted(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	timeout := domain.NewUploadFailure(domain.ErrUploadTimeout, 0, domain.MsgUploadTimeout)
	env.pipeline.outcomes = []error{timeout, timeout, timeout}

	out, err := execute(uploadArgs("--auto-retry")...)

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUploadTimeout)
	assert.Contains(t, err.Error(), "after 3 attempt(s)")
	assert.Contains(t, out, "Retrying upload (3/3)...")
	assert.Contains(t, out, "Retry limit reached")
	assert.Equal(t, 2, env.pipeline.retries)
}

func TestUploadCmd_StatusErrorIsNotFatal(t *testing.T) {
	env, cleanup := setupTestServices()
	defer cleanup()
	env.pipeline.statusErr = domain.ErrConnectivityLost

	out, err := execute(uploadArgs()...)

	require.NoError(t, err)
	assert.Contains(t, out, "could not fetch KYC status")
	assert.Equal(t, 1, env.pipeline.submits)
}

func TestUploadCmd_NotConfigured(t *testing.T) {
	_, cleanup := setupTestServices()
	defer cleanup()
	newPipeline = nil

	_, err := execute(uploadArgs()...)

	assert.EqualError(t, err, "upload pipeline not configured")
}

func TestFollowUpload_LiveProgress(t *testing.T) {
	oldIsTerminal := isTerminal
	isTerminal = func(io.Writer) bool { return true }
	defer func() { isTerminal = oldIsTerminal }()
	_, cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	uploadCmd.SetOut(buf)
	uploadCmd.SetContext(context.Background())
	defer uploadCmd.SetOut(nil)

	task := newFakeTask(domain.SubmissionAttempt{Number: 1}, nil, 10, 55, 100)
	_, err := followUpload(uploadCmd, task)

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\rUploading...  10%")
	assert.Contains(t, buf.String(), "\rUploading... 100%")
}

func TestAwaitRefresh_TimesOut(t *testing.T) {
	old := refreshWait
	refreshWait = 10 * time.Millisecond
	defer func() { refreshWait = old }()

	buf := new(bytes.Buffer)
	statusCmd.SetOut(buf)
	statusCmd.SetContext(context.Background())
	defer statusCmd.SetOut(nil)

	awaitRefresh(statusCmd, newMockPipeline(), make(chan struct{}))
	assert.Empty(t, buf.String())
}
