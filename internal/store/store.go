package store

import (
	"context"
	"sync"

	"knaxim-client/internal/pkg/logger"
	"knaxim-client/internal/service"
	"knaxim-client/pkg/apperr"
	"knaxim-client/pkg/events"
)

const (
	rootModuleName    = "root"
	authModuleName    = "auth"
	fileModuleName    = "file"
	folderModuleName  = "folder"
	groupModuleName   = "group"
	ownerModuleName   = "owner"
	searchModuleName  = "search"
	acronymModuleName = "acronyms"
	previewModuleName = "preview"
	nlpModuleName     = "nlp"
	recentsModuleName = "recents"
	errorModuleName   = "error"
	eventModuleName   = "event"
)

type Options struct {
	SearchPageSize int // lines per matched-line page
	HistoryLimit   int
	PreviewLines   int
}

func (o Options) withDefaults() Options {
	if o.SearchPageSize <= 0 {
		o.SearchPageSize = 100
	}
	if o.HistoryLimit <= 0 {
		o.HistoryLimit = 10
	}
	if o.PreviewLines <= 0 {
		o.PreviewLines = 3
	}
	return o
}

type Deps struct {
	Services *service.Services
	Logger   logger.ILogger
	Options  Options
}

// Store is the client state container. Each module guards its own slice;
// actions never hold a module lock across I/O or while taking another
// module's lock.
type Store struct {
	svc  *service.Services
	log  logger.ILogger
	opts Options

	root     *rootModule
	auth     *authModule
	files    *fileModule
	folders  *folderModule
	groups   *groupModule
	owners   *ownerModule
	search   *searchModule
	acronyms *acronymModule
	preview  *previewModule
	nlp      *nlpModule
	recents  *recentsModule
	errs     *errorModule
	events   *eventModule

	modules []module

	feed      *changeFeed
	worker    *errorWorker
	closeOnce sync.Once
}

func New(deps Deps) *Store {
	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	opts := deps.Options.withDefaults()

	s := &Store{
		svc:      deps.Services,
		log:      log,
		opts:     opts,
		root:     &rootModule{},
		auth:     &authModule{},
		files:    newFileModule(),
		folders:  newFolderModule(),
		groups:   newGroupModule(),
		owners:   newOwnerModule(),
		search:   newSearchModule(opts.HistoryLimit),
		acronyms: &acronymModule{},
		preview:  newPreviewModule(),
		nlp:      newNLPModule(),
		recents:  &recentsModule{},
		errs:     &errorModule{},
		events:   newEventModule(),
		feed:     newChangeFeed(log),
	}
	s.modules = []module{
		s.root, s.auth, s.files, s.folders, s.groups, s.owners, s.search,
		s.acronyms, s.preview, s.nlp, s.recents, s.errs, s.events,
	}
	s.worker = newErrorWorker(s)
	return s
}

// Commit applies a mutation to every module that handles its kind.
func (s *Store) Commit(kind MutationKind, payload any) {
	s.commit(kind, payload)
}

func (s *Store) commit(kind MutationKind, payload any) bool {
	m := Mutation{Kind: kind, Payload: payload}
	handled := false
	for _, mod := range s.modules {
		if mod.mutate(m) {
			handled = true
			s.feed.publish(mod.name(), kind)
		}
	}
	return handled
}

// track increments a loading counter and returns its decrement:
//
//	defer s.track(FileLoading)()
func (s *Store) track(kind MutationKind) func() {
	s.commit(kind, 1)
	return func() { s.commit(kind, -1) }
}

// recordError annotates err with the failing action and queues it for the
// error loop.
func (s *Store) recordError(module, action string, err error) {
	err = apperr.Annotate(err, "action "+action)
	s.log.Warn(module, action+" failed", map[string]interface{}{
		"error":  err.Error(),
		"status": apperr.StatusOf(err),
	})
	s.commit(PushError, err)
}

// Subscribe streams a StoreEvent per applied mutation until ctx is done.
// Delivery order between events is not guaranteed.
func (s *Store) Subscribe(ctx context.Context) (<-chan events.StoreEvent, error) {
	return s.feed.subscribe(ctx)
}

// Loading reports whether any module, or the root bootstrap, is loading.
func (s *Store) Loading() bool {
	return s.root.isLoading() ||
		s.AuthLoading() ||
		s.FileLoading() ||
		s.FolderLoading() ||
		s.GroupLoading() ||
		s.OwnerLoading() ||
		s.SearchLoading() ||
		s.AcronymLoading() ||
		s.NLPLoading() ||
		s.preview.anyLoading()
}

// Reset restores every module to its initial state. Loading counters are
// kept so in-flight actions still balance them.
func (s *Store) Reset() {
	for _, mod := range s.modules {
		mod.reset()
	}
}

// resetSession clears what belongs to the signed-in user. The error queue
// and event handlers survive a logout.
func (s *Store) resetSession() {
	for _, mod := range []module{
		s.auth, s.files, s.folders, s.groups, s.owners, s.search,
		s.acronyms, s.preview, s.nlp, s.recents,
	} {
		mod.reset()
	}
}

// Close stops the error worker and the change feed. Pending error loops
// resolve false.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.worker.stop()
		err = s.feed.close()
	})
	return err
}

type rootModule struct {
	mu      sync.RWMutex
	loading int
}

func (m *rootModule) name() string { return rootModuleName }

func (m *rootModule) mutate(mu Mutation) bool {
	if mu.Kind != ServerLoading {
		return false
	}
	delta, ok := mu.Payload.(int)
	if !ok {
		return false
	}
	m.mu.Lock()
	m.loading += delta
	m.mu.Unlock()
	return true
}

func (m *rootModule) reset() {}

func (m *rootModule) isLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loading > 0
}

// LoadServer fetches the complete profile and fans it out to every module.
func (s *Store) LoadServer(ctx context.Context) {
	defer s.track(ServerLoading)()

	profile, err := s.svc.User.Complete(ctx)
	if err != nil {
		s.recordError(rootModuleName, "LOAD_SERVER", err)
		return
	}

	s.commit(ProcessServerState, profile)
	s.HandleServerState(ctx, profile)
}
