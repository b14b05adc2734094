package dialogue

import (
	"context"
	"errors"
	"time"

	"github.com/iabalyuk/geoguide/geo"
	"github.com/iabalyuk/geoguide/narration"
	"github.com/iabalyuk/geoguide/places"
	"github.com/iabalyuk/geoguide/session"
	"go.uber.org/zap"
)

const (
	DefaultDisplayCap  = 5
	DefaultCallTimeout = 20 * time.Second
)

// Config holds the engine's collaborators
type Config struct {
	Directory   places.Directory
	Routes      places.RouteLinker
	Photos      places.PhotoLinker // Optional; detail cards go without a photo when nil
	Narrator    narration.Service
	Store       session.Store
	Logger      *zap.Logger
	DisplayCap  int
	CallTimeout time.Duration
	Now         func() time.Time
}

// Engine runs the dialogue state machine for every user
type Engine struct {
	directory   places.Directory
	routes      places.RouteLinker
	photos      places.PhotoLinker
	guard       *narration.Guard
	store       session.Store
	logger      *zap.Logger
	displayCap  int
	callTimeout time.Duration
	now         func() time.Time
}

// New creates an engine. Directory, Routes and Store are required.
func New(cfg Config) (*Engine, error) {
	if cfg.Directory == nil {
		return nil, errors.New("dialogue: directory is required")
	}
	if cfg.Routes == nil {
		return nil, errors.New("dialogue: route linker is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("dialogue: session store is required")
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.DisplayCap <= 0 {
		cfg.DisplayCap = DefaultDisplayCap
	}
	if cfg.CallTimeout <= 0 {
		cfg.CallTimeout = DefaultCallTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	logger := cfg.Logger.With(zap.String("component", "dialogue"))
	return &Engine{
		directory:   cfg.Directory,
		routes:      cfg.Routes,
		photos:      cfg.Photos,
		guard:       narration.NewGuard(cfg.Narrator, cfg.CallTimeout, cfg.Logger),
		store:       cfg.Store,
		logger:      logger,
		displayCap:  cfg.DisplayCap,
		callTimeout: cfg.CallTimeout,
		now:         cfg.Now,
	}, nil
}

// Handle applies ev to the user's session and returns what to show.
// Events of one user are serialized; the session is written back before Handle returns.
func (e *Engine) Handle(ctx context.Context, userID int64, ev Event) Reply {
	unlock := e.store.Lock(userID)
	defer unlock()

	logger := e.logger.With(zap.Int64("user_id", userID), zap.String("event", EventName(ev)))

	switch ev.(type) {
	case Start, Restart:
		s := session.New(e.now())
		e.store.Put(userID, s)
		logger.Debug("Session started")
		return e.locationReply(s)
	case Cancel:
		e.store.Remove(userID)
		logger.Debug("Session cancelled")
		return Reply{Prompt: PromptCancelled, Stage: session.StageTerminated, SelectedIndex: session.NoSelection}
	}

	s, ok := e.store.Get(userID)
	if !ok {
		s = session.New(e.now())
		e.store.Put(userID, s)
		logger.Info("Event without a session, starting over")
		reply := e.locationReply(s)
		reply.Stale = resumesSession(ev)
		return reply
	}

	from := s.Stage
	reply := e.transition(ctx, logger, s, ev)

	if s.Stage == session.StageTerminated {
		e.store.Remove(userID)
	} else {
		s.UpdatedAt = e.now()
		e.store.Put(userID, s)
	}
	if from != s.Stage {
		logger.Debug("Stage changed", zap.Stringer("from", from), zap.Stringer("to", s.Stage))
	}
	return reply
}

func (e *Engine) transition(ctx context.Context, logger *zap.Logger, s *session.Session, ev Event) Reply {
	switch s.Stage {
	case session.StageAwaitingLocation:
		if ev, ok := ev.(LocationShared); ok && ev.Coordinate.Valid() {
			loc := ev.Coordinate
			s.Location = &loc
			s.Stage = session.StageAwaitingRadius
			return e.radiusReply(s)
		}
		return e.locationReply(s)

	case session.StageAwaitingRadius:
		if ev, ok := ev.(RadiusChosen); ok && RadiusAllowed(ev.Meters) {
			s.Radius = ev.Meters
			s.Interests = session.Interests{}
			s.Stage = session.StageAwaitingInterests
			return e.interestsReply(s)
		}
		return e.radiusReply(s)

	case session.StageAwaitingInterests:
		switch ev := ev.(type) {
		case InterestToggled:
			if ev.Category.Valid() {
				s.Interests.Toggle(ev.Category)
			}
		case InterestsDone:
			return e.search(ctx, logger, s)
		}
		return e.interestsReply(s)

	case session.StageBrowsing:
		return e.browse(ctx, logger, s, ev)
	}

	logger.Warn("Session in unexpected stage", zap.Stringer("stage", s.Stage))
	s.Stage = session.StageTerminated
	return Reply{Prompt: PromptCancelled, Stage: session.StageTerminated, SelectedIndex: session.NoSelection}
}

func (e *Engine) browse(ctx context.Context, logger *zap.Logger, s *session.Session, ev Event) Reply {
	switch ev := ev.(type) {
	case PlaceSelected:
		if ev.Index >= 0 && ev.Index < len(s.Candidates) {
			return e.selectPlace(ctx, logger, s, ev.Index)
		}
	case RouteRequested:
		if s.HasSelection() && ev.Index >= 0 && ev.Index < len(s.Candidates) {
			reply := e.candidatesReply(s)
			reply.Prompt = PromptRoute
			reply.PlaceName = s.Candidates[ev.Index].Name
			reply.RouteURL = e.routes.RouteURL(*s.Location, s.Candidates[ev.Index].Location)
			return reply
		}
	case DescriptionRequested:
		if s.SelectedDetail != nil {
			return e.narrate(ctx, s, TopicDescription, e.guard.Describe)
		}
	case NarrationRequested:
		if s.SelectedDetail != nil {
			return e.narrate(ctx, s, TopicNarration, e.guard.Narrate)
		}
	case ReviewsRequested:
		if s.SelectedDetail != nil {
			return e.narrate(ctx, s, TopicReviews, e.guard.ReviewsSummary)
		}
	}
	return e.candidatesReply(s)
}

func (e *Engine) search(ctx context.Context, logger *zap.Logger, s *session.Session) Reply {
	types := ResolveTypeFilter(s.Interests)

	callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
	found, err := e.directory.Search(callCtx, *s.Location, s.Radius, types)
	cancel()
	if err != nil {
		logger.Error("Place search failed", zap.Error(err),
			zap.Int("radius", s.Radius), zap.Strings("interests", s.Interests.Codes()))
		found = nil
	}

	if len(found) == 0 {
		s.Stage = session.StageTerminated
		return Reply{Prompt: PromptNoResults, Stage: session.StageTerminated, SelectedIndex: session.NoSelection}
	}
	if len(found) > e.displayCap {
		found = found[:e.displayCap]
	}

	s.Candidates = found
	s.SelectedIndex = session.NoSelection
	s.SelectedDetail = nil
	s.Stage = session.StageBrowsing
	logger.Info("Search finished", zap.Int("candidates", len(found)), zap.Int("radius", s.Radius))
	return e.candidatesReply(s)
}

func (e *Engine) selectPlace(ctx context.Context, logger *zap.Logger, s *session.Session, index int) Reply {
	place := s.Candidates[index]

	// A place without an id cannot be looked up; its summary is all there is.
	detail := places.DetailFromPlace(place)
	if place.ID != "" {
		callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
		fetched, err := e.directory.Detail(callCtx, place.ID)
		cancel()
		if err != nil {
			logger.Warn("Place detail fetch failed, using summary", zap.String("place_id", place.ID), zap.Error(err))
		} else {
			detail = fetched
		}
	}
	detail.ID = place.ID
	if detail.Name == "" {
		detail.Name = place.Name
	}
	if detail.Location == (geo.Coordinate{}) {
		detail.Location = place.Location
	}

	s.SelectedIndex = index
	s.SelectedDetail = &detail
	return e.detailReply(s)
}

type textFunc func(ctx context.Context, name, address string) string

func (e *Engine) narrate(ctx context.Context, s *session.Session, topic Topic, fn textFunc) Reply {
	d := s.SelectedDetail
	address := d.Address
	if address == "" {
		address = d.Location.String()
	}

	reply := e.detailReply(s)
	reply.Prompt = PromptNarration
	reply.Topic = topic
	reply.PlaceName = d.Name
	reply.Text = fn(ctx, d.Name, address)
	return reply
}

func (e *Engine) locationReply(s *session.Session) Reply {
	return Reply{Prompt: PromptLocation, Stage: s.Stage, SelectedIndex: session.NoSelection}
}

func (e *Engine) radiusReply(s *session.Session) Reply {
	return Reply{Prompt: PromptRadius, Stage: s.Stage, Radii: radii(), SelectedIndex: session.NoSelection}
}

func (e *Engine) interestsReply(s *session.Session) Reply {
	return Reply{
		Prompt:        PromptInterests,
		Stage:         s.Stage,
		Interests:     interestOptions(s.Interests),
		SelectedIndex: session.NoSelection,
	}
}

func (e *Engine) candidatesReply(s *session.Session) Reply {
	out := make([]Candidate, len(s.Candidates))
	for i, p := range s.Candidates {
		out[i] = Candidate{Index: i, Place: p, DistanceMeters: geo.DistanceMeters(*s.Location, p.Location)}
	}
	return Reply{
		Prompt:        PromptCandidates,
		Stage:         s.Stage,
		Candidates:    out,
		SelectedIndex: s.SelectedIndex,
	}
}

func (e *Engine) detailReply(s *session.Session) Reply {
	reply := e.candidatesReply(s)
	reply.Prompt = PromptDetail
	if s.SelectedDetail != nil {
		d := *s.SelectedDetail
		reply.Detail = &d
		reply.PlaceName = d.Name
		reply.DetailDistance = geo.DistanceMeters(*s.Location, d.Location)
		if e.photos != nil {
			reply.PhotoURL = e.photos.PhotoURL(d)
		}
	}
	return reply
}

// resumesSession reports whether ev can only come from an earlier dialogue,
// such as a press on a keyboard that session rendered. Messages may come from
// a user who never started one.
func resumesSession(ev Event) bool {
	switch ev.(type) {
	case TextEntered, LocationShared:
		return false
	}
	return true
}
