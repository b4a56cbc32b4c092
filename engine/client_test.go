package engine_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezrec/lmcview/engine"
	"github.com/ezrec/lmcview/internal/lmctest"
	"github.com/ezrec/lmcview/transfer"
)

func newClient(t *testing.T) (*engine.Client, *lmctest.Server) {
	srv := lmctest.NewServer()
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client := engine.NewClient(ts.URL + "/")
	client.HTTP = ts.Client()
	return client, srv
}

func TestClient_Compile(t *testing.T) {
	assert := assert.New(t)
	client, srv := newClient(t)

	compiled, err := client.Compile(context.Background(), "INP\nOUT\nHLT")
	require.NoError(t, err)

	assert.Equal([]string{"00 INP", "01 OUT", "02 HLT"}, compiled.ObjectCode)
	assert.Equal("901", compiled.State.Memory["00"])
	assert.Equal("902", compiled.State.Memory["01"])
	assert.Equal("000", compiled.State.Registers["ACC"])
	assert.Equal(1, srv.Count(engine.PATH_COMPILE))
}

func TestClient_CompileInvalid(t *testing.T) {
	assert := assert.New(t)
	client, _ := newClient(t)

	_, err := client.Compile(context.Background(), "INP\nFOO")
	var cerr *engine.CompileError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(engine.Line(2), cerr.Line)
	assert.Equal("Code was not valid:\nInvalid instruction\nError occurred on line 2 of assembly.", cerr.Error())
}

func TestClient_CheckUnknownLine(t *testing.T) {
	assert := assert.New(t)
	client, srv := newClient(t)

	source := ""
	for range 101 {
		source += "HLT\n"
	}

	err := client.Check(context.Background(), source)
	var cerr *engine.CompileError
	require.True(t, errors.As(err, &cerr))
	assert.False(cerr.Line.Known())
	assert.Equal("Code was not valid:\nToo many lines to fit in memory.", cerr.Error())

	assert.NoError(client.Check(context.Background(), "HLT"))
	assert.Equal(2, srv.Count(engine.PATH_CHECK))
}

func TestClient_StepAndAfterInput(t *testing.T) {
	assert := assert.New(t)
	client, _ := newClient(t)
	ctx := context.Background()

	compiled, err := client.Compile(ctx, "INP\nOUT\nHLT")
	require.NoError(t, err)

	cycle, err := client.Step(ctx, compiled.State)
	require.NoError(t, err)
	assert.True(cycle.ReachedINP)
	assert.False(cycle.ReachedHLT)
	assert.Equal("01", cycle.State.Registers["PC"])
	assert.NotEmpty(cycle.Transfers)

	tr, err := client.AfterInput(ctx, cycle.State, "042")
	require.NoError(t, err)
	assert.Equal(transfer.Transfer{EndReg: "ACC", Value: "042"}, tr)
}

func TestClient_Run(t *testing.T) {
	assert := assert.New(t)
	client, srv := newClient(t)
	ctx := context.Background()

	compiled, err := client.Compile(ctx, "LDA a\nOUT\nHLT\na DAT 7")
	require.NoError(t, err)

	cycles, err := client.Run(ctx, compiled.State)
	require.NoError(t, err)
	require.Len(t, cycles, 3)
	assert.Equal("007", cycles[1].Output)
	assert.True(cycles[2].ReachedHLT)
	assert.Equal(1, srv.Count(engine.PATH_RUN))
}

func TestClient_Status(t *testing.T) {
	assert := assert.New(t)
	client, _ := newClient(t)
	ctx := context.Background()

	compiled, err := client.Compile(ctx, "DAT 400")
	require.NoError(t, err)

	_, err = client.Step(ctx, compiled.State)
	var serr *engine.ErrStatus
	require.True(t, errors.As(err, &serr))
	assert.Equal(http.StatusInternalServerError, serr.Code)
	assert.Equal(engine.PATH_STEP, serr.Endpoint)
	assert.Equal("invalid instruction 400 at address 00", serr.Body)
}

func TestClient_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	client := engine.NewClient(url)
	err := client.Check(context.Background(), "HLT")
	assert.Error(t, err)
}
