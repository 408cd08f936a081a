/*
Package app links together all the various components
to construct the quorum application.
*/
package app

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/app"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/store/iavl"
	"github.com/iov-one/quorum/x"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/iov-one/quorum/x/resource"
	"github.com/iov-one/quorum/x/sigs"
	"github.com/iov-one/quorum/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Name is reported by the abci Info call.
const Name = "quorum"

// Authenticator returns the authentication used by all handlers. Messages
// are authorized either by public key signatures or by a group authority
// during proposal execution.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, multisig.Authenticate{})
}

// Chain returns a chain of decorators, to handle authentication,
// logging, and recovery
func Chain() app.Decorators {
	return app.ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		utils.NewActionTagger(),
		// on CheckTx, bad tx don't affect state
		utils.NewSavepoint().OnCheck(),
		sigs.NewDecorator(),
		// on DeliverTx, bad tx will increment nonce
		// even if the message fails
		utils.NewSavepoint().OnDeliver(),
	)
}

// Messages returns a registry of all messages that can be sent in a
// transaction or invoked by an executed proposal.
func Messages() *app.MsgRegistry {
	r := app.NewMsgRegistry()
	r.Register(
		&sigs.BumpSequenceMsg{},
		&multisig.CreateGroupMsg{},
		&multisig.CreateProposalMsg{},
		&multisig.ApproveMsg{},
		&multisig.ExecuteMsg{},
		&multisig.UpdateConfigurationMsg{},
		&resource.RegisterMsg{},
		&resource.TransferMsg{},
	)
	return r
}

// Router returns a router dispatching to all extensions. Executed
// proposals are delivered to the same router.
func Router(authFn x.Authenticator, msgs *app.MsgRegistry) *app.Router {
	r := app.NewRouter()
	ctrl := multisig.NewController(multisig.ConditionDeriver{}, multisig.NewHandlerInvoker(r, msgs))
	sigs.RegisterRoutes(r, authFn)
	multisig.RegisterRoutes(r, authFn, ctrl)
	resource.RegisterRoutes(r, authFn)
	return r
}

// QueryRouter returns a default query router,
// allowing access to "/auth", "/groups", "/proposals" and "/resources"
func QueryRouter() quorum.QueryRouter {
	r := quorum.NewQueryRouter()
	r.RegisterAll(
		sigs.RegisterQuery,
		multisig.RegisterQuery,
		resource.RegisterQuery,
	)
	return r
}

// Initializers returns all genesis initializers.
func Initializers() quorum.Initializer {
	return quorum.GenesisInitializers(
		&multisig.Initializer{Deriver: multisig.ConditionDeriver{}},
	)
}

// Stack wires up a standard router with a standard decorator
// chain. This can be passed into BaseApp.
func Stack(msgs *app.MsgRegistry) quorum.Handler {
	authFn := Authenticator()
	return Chain().WithHandler(Router(authFn, msgs))
}

// Application constructs a basic ABCI application with
// the given arguments. An empty dbPath keeps the state in memory.
func Application(dbPath string, logger log.Logger, debug bool) (app.BaseApp, error) {
	kv, err := CommitKVStore(dbPath)
	if err != nil {
		return app.BaseApp{}, err
	}
	return NewApplication(kv, logger, debug), nil
}

// NewApplication constructs the ABCI application over given store.
func NewApplication(kv quorum.CommitKVStore, logger log.Logger, debug bool) app.BaseApp {
	msgs := Messages()
	store := app.NewStoreApp(Name, kv, QueryRouter(), context.Background()).
		WithInit(Initializers()).
		WithLogger(logger)
	return app.NewBaseApp(store, msgs.DecodeTx, Stack(msgs), debug)
}

// CommitKVStore returns an initialized KVStore that persists
// the data to the named path.
func CommitKVStore(dbPath string) (quorum.CommitKVStore, error) {
	// memory backed case, just for testing
	if dbPath == "" {
		return iavl.NewMemCommitStore(), nil
	}

	// Expand the path fully
	path, err := filepath.Abs(dbPath)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrInput, "invalid database name: %s", dbPath)
	}

	// Some external calls accidentally add a ".db", which is now removed
	path = strings.TrimSuffix(path, filepath.Ext(path))

	// Split the database name into it's components (dir, name)
	dir := filepath.Dir(path)
	name := filepath.Base(path)
	kv, err := iavl.NewCommitStore(dir, name)
	if err != nil {
		return nil, err
	}
	return kv, nil
}
