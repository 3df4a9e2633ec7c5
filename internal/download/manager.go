package download

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/handiism/soundcloud-downloader/internal/archive"
	"github.com/handiism/soundcloud-downloader/internal/audio"
	"github.com/handiism/soundcloud-downloader/internal/config"
	schttp "github.com/handiism/soundcloud-downloader/internal/http"
	ioutils "github.com/handiism/soundcloud-downloader/internal/io"
	"github.com/handiism/soundcloud-downloader/internal/limiter"
	"github.com/handiism/soundcloud-downloader/internal/model"
	"github.com/handiism/soundcloud-downloader/internal/soundcloud"
)

// Manager coordinates collection downloads.
type Manager struct {
	settings     *config.Settings
	pathCfg      *model.PathConfig
	trackCfg     *model.TrackConfig
	logger       *zap.Logger
	httpClient   *schttp.Client
	client       *soundcloud.Client
	scOpts       []soundcloud.Option
	tagger       *audio.Tagger
	playlist     *audio.PlaylistCreator
	imageService *ioutils.ImageService

	// tracks bounds track downloads across all collections. It can be
	// resized while downloads run.
	tracks *limiter.Limiter
	runID  string

	authOnce sync.Once
	auth     soundcloud.Auth

	archive    *archive.Archive
	ownArchive bool

	mu          sync.RWMutex
	collections []*model.Collection

	totalBytes      atomic.Int64
	receivedBytes   atomic.Int64
	totalFiles      atomic.Int32
	downloadedFiles atomic.Int32
	failedFiles     atomic.Int32

	onProgress func(ProgressEvent)
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger receiving every progress event.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) { m.logger = logger }
}

// WithAuth skips client id bootstrapping.
func WithAuth(auth soundcloud.Auth) Option {
	return func(m *Manager) {
		m.authOnce.Do(func() { m.auth = auth })
	}
}

// WithArchive uses a instead of opening settings.ArchivePath. The
// caller keeps ownership of a.
func WithArchive(a *archive.Archive) Option {
	return func(m *Manager) { m.archive = a }
}

// WithSoundCloudOptions appends options to the API client built by
// NewManager.
func WithSoundCloudOptions(opts ...soundcloud.Option) Option {
	return func(m *Manager) { m.scOpts = append(m.scOpts, opts...) }
}

// NewManager creates a new download Manager.
func NewManager(settings *config.Settings, onProgress func(ProgressEvent), opts ...Option) *Manager {
	m := &Manager{
		settings:   settings,
		pathCfg:    settings.ToPathConfig(),
		trackCfg:   settings.ToTrackConfig(),
		logger:     zap.NewNop(),
		tracks:     limiter.New(max(1, settings.MaxConcurrentTracksDownload)),
		runID:      uuid.NewString(),
		onProgress: onProgress,
	}
	for _, opt := range opts {
		opt(m)
	}

	tagCfg := audio.DefaultTagConfig()
	tagCfg.ModifyTags = settings.ModifyTags
	m.tagger = audio.NewTagger(tagCfg)
	m.playlist = audio.NewPlaylistCreator(m.pathCfg.PlaylistFormat, settings.M3UExtended)
	m.imageService = ioutils.NewImageService(90)

	// Media downloads can take longer than any sensible request timeout;
	// cancellation goes through the context instead.
	m.httpClient = schttp.NewClient(
		schttp.WithLogger(m.logger),
		schttp.WithTimeout(0),
		schttp.WithTransport(newTransport(settings)),
		schttp.WithThrottle(settings.RequestsPerSecond, settings.RequestBurst),
	)
	m.client = soundcloud.New(append([]soundcloud.Option{
		soundcloud.WithHTTPClient(m.httpClient),
		soundcloud.WithLimiter(limiter.New(max(1, settings.MaxConcurrentRequests))),
		soundcloud.WithLogger(m.logger),
	}, m.scOpts...)...)
	return m
}

func newTransport(s *config.Settings) http.RoundTripper {
	t := http.DefaultTransport.(*http.Transport).Clone()
	switch s.ProxyType {
	case "none":
		t.Proxy = nil
	case "manual":
		t.Proxy = http.ProxyURL(&url.URL{
			Scheme: "http",
			Host:   net.JoinHostPort(s.ProxyAddress, strconv.Itoa(s.ProxyPort)),
		})
	default:
		t.Proxy = http.ProxyFromEnvironment
	}
	return t
}

// Client returns the API client used by the manager.
func (m *Manager) Client() *soundcloud.Client {
	return m.client
}

// Auth returns the credentials used for API calls. The first call
// settles them: the configured client id if any, otherwise one scraped
// from the site, otherwise soundcloud.DefaultClientID.
func (m *Manager) Auth(ctx context.Context) soundcloud.Auth {
	m.authOnce.Do(func() {
		if m.settings.ClientID != "" {
			m.auth = soundcloud.Auth{ClientID: m.settings.ClientID}
			return
		}
		auth, err := m.client.FetchClientID(ctx)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Could not fetch a client id, using the bundled one: %v", err), Level: LevelWarning})
			auth = soundcloud.DefaultAuth()
		}
		m.auth = auth
	})
	return m.auth
}

// RunID identifies this manager's downloads in logs and in the archive.
func (m *Manager) RunID() string {
	return m.runID
}

// Initialize resolves the input URLs, one per line, into collections.
// URLs that fail to resolve are reported and skipped.
func (m *Manager) Initialize(ctx context.Context, inputURLs string) error {
	if err := m.openArchive(); err != nil {
		return err
	}
	auth := m.Auth(ctx)

	for _, inputURL := range m.parseInputURLs(inputURLs) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Fetching info: %s", inputURL), Level: LevelVerbose})

		collections, err := m.collect(ctx, auth, inputURL)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error getting %s: %v", inputURL, err), Level: LevelError})
			continue
		}

		m.mu.Lock()
		m.collections = append(m.collections, collections...)
		m.mu.Unlock()
		for _, c := range collections {
			m.totalFiles.Add(int32(len(c.Tracks)))
			m.progress(ProgressEvent{Message: fmt.Sprintf("Found: %s (%d tracks)", describe(c), len(c.Tracks)), Level: LevelInfo})
		}
	}
	return nil
}

func (m *Manager) openArchive() error {
	if m.archive != nil || m.settings.ArchivePath == "" {
		return nil
	}
	a, err := archive.Open(m.settings.ArchivePath)
	if err != nil {
		return err
	}
	m.archive, m.ownArchive = a, true
	return nil
}

// Close releases the archive if the manager opened it.
func (m *Manager) Close() error {
	if m.ownArchive && m.archive != nil {
		return m.archive.Close()
	}
	return nil
}

// StartDownloads downloads every initialized collection. Individual
// track failures are reported through events; the returned error is
// only set when the context ends or a collection folder cannot be
// created.
func (m *Manager) StartDownloads(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, m.settings.MaxConcurrentPlaylistsDownload))

	for _, c := range m.Collections() {
		g.Go(func() error {
			return m.downloadCollection(ctx, c)
		})
	}
	return g.Wait()
}

// SetMaxConcurrentTracks changes how many tracks download at once.
// Downloads already running are not interrupted.
func (m *Manager) SetMaxConcurrentTracks(n int) {
	if n < 1 {
		n = 1
	}
	m.tracks.SetMaxCount(n)
	m.progress(ProgressEvent{Message: fmt.Sprintf("Concurrent track downloads: %d", n), Level: LevelVerbose})
}

// MaxConcurrentTracks returns the current track concurrency.
func (m *Manager) MaxConcurrentTracks() int {
	return m.tracks.MaxCount()
}

// GetProgress returns current download progress. total grows as media
// sizes become known.
func (m *Manager) GetProgress() (received, total int64, filesReceived, filesTotal int32) {
	return m.receivedBytes.Load(), m.totalBytes.Load(),
		m.downloadedFiles.Load(), m.totalFiles.Load()
}

// Failed returns the number of tracks that could not be downloaded.
func (m *Manager) Failed() int32 {
	return m.failedFiles.Load()
}

// Collections returns the initialized collections.
func (m *Manager) Collections() []*model.Collection {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.collections)
}

// GetCollectionNames returns a description of each initialized collection.
func (m *Manager) GetCollectionNames() []string {
	collections := m.Collections()
	names := make([]string, len(collections))
	for i, c := range collections {
		names[i] = fmt.Sprintf("%s (%d tracks)", describe(c), len(c.Tracks))
	}
	return names
}

func describe(c *model.Collection) string {
	if c.Title == "" {
		return c.Artist
	}
	return c.Artist + " - " + c.Title
}

func (m *Manager) parseInputURLs(input string) []string {
	var urls []string
	for _, line := range strings.FieldsFunc(input, func(r rune) bool { return r == '\n' || r == '\r' }) {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
			urls = append(urls, line)
		}
	}
	return urls
}

func (m *Manager) downloadCollection(ctx context.Context, c *model.Collection) error {
	if err := os.MkdirAll(c.Path, 0755); err != nil {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating directory: %v", err), Level: LevelError})
		return err
	}

	var artwork []byte
	if (m.settings.SaveCoverArtInTags || m.settings.SaveCoverArtInFolder) && c.HasArtwork() {
		var err error
		if artwork, err = m.downloadArtwork(ctx, c); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading artwork for %s: %v", describe(c), err), Level: LevelWarning})
		}
	}

	entries := make([]audio.Entry, len(c.Tracks))
	var (
		g            errgroup.Group
		successCount atomic.Int32
	)
	for i, track := range c.Tracks {
		g.Go(func() error {
			ticket, err := m.tracks.Acquire(ctx)
			if err != nil {
				return err
			}
			defer ticket.Release()

			path, err := m.downloadTrack(ctx, c, track, artwork)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				m.failedFiles.Add(1)
				m.progress(ProgressEvent{Message: fmt.Sprintf("Error downloading %s: %v", track.Title, err), Level: LevelError})
				return nil
			}
			entries[i] = audio.Entry{Track: track, Path: path}
			successCount.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if m.settings.CreatePlaylist && c.Title != "" {
		saved := slices.DeleteFunc(entries, func(e audio.Entry) bool { return e.Path == "" })
		content := m.playlist.CreatePlaylist(c, saved)
		if err := ioutils.WriteFileAtomic(c.PlaylistPath, []byte(content)); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error creating playlist: %v", err), Level: LevelWarning})
		} else {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Created playlist for %s", c.Title), Level: LevelSuccess})
		}
	}

	if int(successCount.Load()) == len(c.Tracks) {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Successfully downloaded: %s", describe(c)), Level: LevelSuccess})
	} else {
		m.progress(ProgressEvent{Message: fmt.Sprintf("Finished %s, some tracks failed", describe(c)), Level: LevelWarning})
	}
	return nil
}

func (m *Manager) downloadArtwork(ctx context.Context, c *model.Collection) ([]byte, error) {
	var artwork []byte
	err := m.retry(ctx, "artwork", func(ctx context.Context) error {
		var err error
		artwork, err = m.httpClient.DownloadBytes(ctx, ioutils.ArtworkURL(c.ArtworkURL, ioutils.ArtworkT500))
		return err
	})
	if err != nil {
		return nil, err
	}

	if m.settings.SaveCoverArtInFolder {
		toSave, err := m.imageService.Prepare(ctx, artwork,
			m.settings.CoverArtInFolderResize, m.settings.CoverArtInFolderMaxSize, m.settings.ConvertCoverArtToJPG)
		if err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error converting artwork: %v", err), Level: LevelWarning})
			toSave = artwork
		}
		if err := ioutils.WriteFileAtomic(c.ArtworkPath, toSave); err != nil {
			m.progress(ProgressEvent{Message: fmt.Sprintf("Error saving artwork: %v", err), Level: LevelWarning})
		}
	}

	if !m.settings.SaveCoverArtInTags {
		return nil, nil
	}
	forTags, err := m.imageService.Prepare(ctx, artwork,
		m.settings.CoverArtInTagsResize, m.settings.CoverArtInTagsMaxSize, m.settings.ConvertCoverArtToJPG)
	if err != nil {
		return nil, fmt.Errorf("converting artwork: %w", err)
	}

	m.progress(ProgressEvent{Message: fmt.Sprintf("Downloaded artwork for %s", describe(c)), Level: LevelVerbose})
	return forTags, nil
}
