package app_test

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	app "github.com/iov-one/vestd/cmd/vestd/app"
	"github.com/iov-one/vestd/x/vesting"
	"github.com/iov-one/weave"
	weaveApp "github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/weavetest/assert"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const appState = `
  {
    "cash": [
      {
        "address": "%s",
        "coins": [
          {"whole": 50000, "ticker": "IOV"}
        ]
      }
    ],
    "conf": {
      "cash": {
        "collector_address": "seq:test/coll/1",
        "minimal_fee": {}
      },
      "migration": {
        "admin": "%s"
      },
      "vesting": {
        "owner": "%s",
        "claim_policy": 1
      }
    },
    "initialize_schema": [
      {"pkg": "cash", "ver": 1},
      {"pkg": "sigs", "ver": 1},
      {"pkg": "utils", "ver": 1},
      {"pkg": "vesting", "ver": 1}
    ]
  }
`

type appFixture struct {
	ChainID           string
	GenesisKey        *crypto.PrivateKey
	GenesisKeyAddress weave.Address
}

func newAppFixture() *appFixture {
	pk := crypto.GenPrivKeyEd25519()
	return &appFixture{
		ChainID:           fmt.Sprintf("chain-%d", rand.Intn(99999999)),
		GenesisKey:        pk,
		GenesisKeyAddress: pk.PublicKey().Address(),
	}
}

func (f *appFixture) build(t testing.TB) weaveApp.BaseApp {
	t.Helper()

	stack := app.Stack(coin.Coin{})
	myApp, err := app.Application("vestd", stack, app.TxDecoder, "", true)
	if err != nil {
		t.Fatalf("cannot create application: %s", err)
	}
	myApp.WithInit(weaveApp.ChainInitializers(
		&migration.Initializer{},
		&cash.Initializer{},
		&vesting.Initializer{},
	))
	myApp.WithLogger(log.NewNopLogger())

	genesis := fmt.Sprintf(appState, f.GenesisKeyAddress, f.GenesisKeyAddress, f.GenesisKeyAddress)
	myApp.InitChain(abci.RequestInitChain{AppStateBytes: []byte(genesis), ChainId: f.ChainID})
	header := abci.Header{Height: 1, Time: time.Unix(1000000, 0)}
	myApp.BeginBlock(abci.RequestBeginBlock{Header: header})
	myApp.EndBlock(abci.RequestEndBlock{})
	if cres := myApp.Commit(); len(cres.Data) == 0 {
		t.Fatal("first block must not be empty")
	}
	return myApp
}

func TestAppVestingLifecycle(t *testing.T) {
	f := newAppFixture()
	myApp := f.build(t)

	beneficiary := crypto.GenPrivKeyEd25519().PublicKey().Address()
	base := weave.UnixTime(1000000)

	// Lock half of the genesis funds for the beneficiary, releasing
	// them linearly over a 1000 seconds window.
	createTx := &app.Tx{
		Sum: &app.Tx_VestingCreateLockMsg{
			VestingCreateLockMsg: &vesting.CreateLockMsg{
				Metadata:    &weave.Metadata{Schema: 1},
				Depositor:   f.GenesisKeyAddress,
				Beneficiary: beneficiary,
				Amount:      coin.NewCoin(25000, 0, "IOV"),
				Schedule: &vesting.ReleaseSchedule{
					Kind:  vesting.ReleaseKindLinear,
					Start: base,
					End:   base + 1000,
				},
			},
		},
	}
	dres := signAndCommit(t, myApp, createTx, f.GenesisKey, 0, f.ChainID, 2, base.Time())
	lockID := dres.Data

	queryAndCheckLock(t, myApp, "/locks", lockID, vesting.Lock{
		Metadata:    &weave.Metadata{Schema: 1},
		Depositor:   f.GenesisKeyAddress,
		Beneficiary: beneficiary,
		Amount:      coin.NewCoin(25000, 0, "IOV"),
		Claimed:     coin.Coin{Ticker: "IOV"},
		Schedule: &vesting.ReleaseSchedule{
			Kind:  vesting.ReleaseKindLinear,
			Start: base,
			End:   base + 1000,
		},
	})
	queryAndCheckWallet(t, myApp, "/wallets", f.GenesisKeyAddress,
		coin.Coins{{Ticker: "IOV", Whole: 25000}})
	queryAndCheckWallet(t, myApp, "/wallets", vesting.VaultAccount("IOV"),
		coin.Coins{{Ticker: "IOV", Whole: 25000}})

	// Halfway through the window half of the locked value is released.
	claimTx := &app.Tx{
		Sum: &app.Tx_VestingClaimMsg{
			VestingClaimMsg: &vesting.ClaimMsg{
				Metadata: &weave.Metadata{Schema: 1},
				LockID:   lockID,
			},
		},
	}
	signAndCommit(t, myApp, claimTx, f.GenesisKey, 1, f.ChainID, 3, (base + 500).Time())
	queryAndCheckWallet(t, myApp, "/wallets", beneficiary,
		coin.Coins{{Ticker: "IOV", Whole: 12500}})

	// After the window everything is paid out and the lock is gone.
	claimTx = &app.Tx{
		Sum: &app.Tx_VestingClaimMsg{
			VestingClaimMsg: &vesting.ClaimMsg{
				Metadata: &weave.Metadata{Schema: 1},
				LockID:   lockID,
			},
		},
	}
	signAndCommit(t, myApp, claimTx, f.GenesisKey, 2, f.ChainID, 4, (base + 2000).Time())
	queryAndCheckWallet(t, myApp, "/wallets", beneficiary,
		coin.Coins{{Ticker: "IOV", Whole: 25000}})

	query := abci.RequestQuery{Path: "/locks", Data: lockID}
	if res := myApp.Query(query); len(res.Value) != 0 {
		t.Fatal("fully claimed lock must be deleted")
	}
}

// signAndCommit signs tx and submits it to the chain within its own block.
// It fails the test in case of any error during the process.
func signAndCommit(t testing.TB, myApp weaveApp.BaseApp, tx *app.Tx,
	pk *crypto.PrivateKey, nonce int64, chainID string, height int64, blockTime time.Time) abci.ResponseDeliverTx {
	t.Helper()

	sig, err := sigs.SignTx(pk, tx, chainID, nonce)
	assert.Nil(t, err)
	tx.Signatures = []*sigs.StdSignature{sig}

	txBytes, err := tx.Marshal()
	assert.Nil(t, err)

	header := abci.Header{
		Height: height,
		Time:   blockTime,
	}
	myApp.BeginBlock(abci.RequestBeginBlock{Header: header})
	chres := myApp.CheckTx(txBytes)
	assert.Equal(t, uint32(0), chres.Code)

	dres := myApp.DeliverTx(txBytes)
	assert.Equal(t, uint32(0), dres.Code)

	myApp.EndBlock(abci.RequestEndBlock{})
	cres := myApp.Commit()
	assert.Equal(t, true, len(cres.Data) != 0)
	return dres
}

func queryAndCheckWallet(t testing.TB, myApp weaveApp.BaseApp, path string, data []byte, expected coin.Coins) {
	t.Helper()

	query := abci.RequestQuery{Path: path, Data: data}
	res := myApp.Query(query)
	assert.Equal(t, uint32(0), res.Code)
	assert.Equal(t, true, len(res.Value) != 0)

	var actual cash.Set
	err := weaveApp.UnmarshalOneResult(res.Value, &actual)
	assert.Nil(t, err)
	assert.Equal(t, expected, coin.Coins(actual.Coins))
}

func queryAndCheckLock(t testing.TB, myApp weaveApp.BaseApp, path string, data []byte, expected vesting.Lock) {
	t.Helper()

	query := abci.RequestQuery{Path: path, Data: data}
	res := myApp.Query(query)
	assert.Equal(t, uint32(0), res.Code)
	assert.Equal(t, true, len(res.Value) != 0)

	var actual vesting.Lock
	err := weaveApp.UnmarshalOneResult(res.Value, &actual)
	assert.Nil(t, err)
	assert.Equal(t, expected, actual)
}
