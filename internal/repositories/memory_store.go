package repositories

import (
	"context"
	"sort"
	"sync"
	"time"

	"agrocommunity_backend/internal/models"
)

// MemoryStore keeps every table in maps behind one lock, so multi-step
// mutations such as post deletion are atomic here too.
type MemoryStore struct {
	mu sync.RWMutex

	users     map[string]*models.User
	follows   map[string]map[string]time.Time // follower -> following -> at
	bookmarks map[string]map[string]time.Time // user -> post -> at

	posts    map[string]*models.Post
	likes    map[string]map[string]time.Time // post -> user -> at
	comments map[string][]models.Comment     // post -> comments, oldest first

	conversations map[[2]string]*models.Conversation
	messages      map[string][]models.Message // conversation -> messages
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:         make(map[string]*models.User),
		follows:       make(map[string]map[string]time.Time),
		bookmarks:     make(map[string]map[string]time.Time),
		posts:         make(map[string]*models.Post),
		likes:         make(map[string]map[string]time.Time),
		comments:      make(map[string][]models.Comment),
		conversations: make(map[[2]string]*models.Conversation),
		messages:      make(map[string][]models.Message),
	}
}

func (s *MemoryStore) Users() UserRepository                 { return &memoryUsers{s} }
func (s *MemoryStore) Posts() PostRepository                 { return &memoryPosts{s} }
func (s *MemoryStore) Conversations() ConversationRepository { return &memoryConversations{s} }

// now returns strictly increasing timestamps so ordering by creation time
// stays stable within a process.
var (
	clockMu  sync.Mutex
	lastTick time.Time
)

func now() time.Time {
	clockMu.Lock()
	defer clockMu.Unlock()
	t := time.Now().UTC()
	if !t.After(lastTick) {
		t = lastTick.Add(time.Microsecond)
	}
	lastTick = t
	return t
}

func ctxErr(ctx context.Context) error {
	return ctx.Err()
}

// idsByTime returns the keys of set ordered by their timestamp.
func idsByTime(set map[string]time.Time) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return set[ids[i]].Before(set[ids[j]]) })
	return ids
}

// toggle flips membership of key in set[owner]; returns true when added.
func toggle(set map[string]map[string]time.Time, owner, key string) bool {
	inner, ok := set[owner]
	if !ok {
		inner = make(map[string]time.Time)
		set[owner] = inner
	}
	if _, ok := inner[key]; ok {
		delete(inner, key)
		return false
	}
	inner[key] = now()
	return true
}

// ============================================
// Users
// ============================================

type memoryUsers struct{ s *MemoryStore }

func (r *memoryUsers) Create(ctx context.Context, user *models.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == user.Email || u.Username == user.Username {
			return ErrUserAlreadyExists
		}
	}
	user.EnsureID()
	user.CreatedAt = now()
	user.UpdatedAt = user.CreatedAt
	if user.Role == "" {
		user.Role = models.UserRoleFarmer
	}
	stored := *user
	r.s.users[user.ID] = &stored
	return nil
}

func (r *memoryUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *memoryUsers) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, ErrUserNotFound
}

func (r *memoryUsers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err == ErrUserNotFound {
		return false, nil
	}
	return err == nil, err
}

func (r *memoryUsers) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if u.Username == username {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryUsers) Update(ctx context.Context, user *models.User) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return ErrUserNotFound
	}
	stored.Name = user.Name
	stored.Role = user.Role
	stored.PasswordHash = user.PasswordHash
	stored.IsVerified = user.IsVerified
	stored.Avatar = user.Avatar
	stored.UpdatedAt = now()
	return nil
}

func (r *memoryUsers) FindAll(ctx context.Context) ([]models.User, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r *memoryUsers) ToggleFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return toggle(r.s.follows, followerID, followingID), nil
}

func (r *memoryUsers) FollowerIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	followers := make(map[string]time.Time)
	for follower, targets := range r.s.follows {
		if at, ok := targets[userID]; ok {
			followers[follower] = at
		}
	}
	return idsByTime(followers), nil
}

func (r *memoryUsers) FollowingIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return idsByTime(r.s.follows[userID]), nil
}

func (r *memoryUsers) ToggleBookmark(ctx context.Context, userID, postID string) (bool, error) {
	if err := ctxErr(ctx); err != nil {
		return false, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return toggle(r.s.bookmarks, userID, postID), nil
}

func (r *memoryUsers) BookmarkIDs(ctx context.Context, userID string) ([]string, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return idsByTime(r.s.bookmarks[userID]), nil
}

// ============================================
// Posts
// ============================================

type memoryPosts struct{ s *MemoryStore }

func (r *memoryPosts) Create(ctx context.Context, post *models.Post) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	post.EnsureID()
	post.CreatedAt = now()
	post.UpdatedAt = post.CreatedAt
	post.Likes = []string{}
	post.Comments = []models.Comment{}

	stored := *post
	stored.Author = nil
	r.s.posts[post.ID] = &stored
	return nil
}

// hydrate builds the read view of a post. Caller holds the lock.
func (r *memoryPosts) hydrate(p *models.Post) models.Post {
	post := *p
	if author, ok := r.s.users[post.AuthorID]; ok {
		a := *author
		post.Author = &a
	}
	post.Likes = idsByTime(r.s.likes[post.ID])
	post.Comments = r.commentsOf(post.ID)
	return post
}

func (r *memoryPosts) commentsOf(postID string) []models.Comment {
	src := r.s.comments[postID]
	comments := make([]models.Comment, len(src))
	for i, c := range src {
		comments[i] = c
		if author, ok := r.s.users[c.AuthorID]; ok {
			a := *author
			comments[i].Author = &a
		}
	}
	return comments
}

func (r *memoryPosts) FindByID(ctx context.Context, id string) (*models.Post, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.posts[id]
	if !ok {
		return nil, ErrPostNotFound
	}
	post := r.hydrate(p)
	return &post, nil
}

func (r *memoryPosts) list(ctx context.Context, keep func(*models.Post) bool) ([]models.Post, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	posts := make([]models.Post, 0)
	for _, p := range r.s.posts {
		if keep(p) {
			posts = append(posts, r.hydrate(p))
		}
	}
	sort.Slice(posts, func(i, j int) bool { return posts[i].CreatedAt.After(posts[j].CreatedAt) })
	return posts, nil
}

func (r *memoryPosts) FindAll(ctx context.Context) ([]models.Post, error) {
	return r.list(ctx, func(*models.Post) bool { return true })
}

func (r *memoryPosts) FindByAuthor(ctx context.Context, authorID string) ([]models.Post, error) {
	return r.list(ctx, func(p *models.Post) bool { return p.AuthorID == authorID })
}

func (r *memoryPosts) IDsByAuthor(ctx context.Context, authorID string) ([]string, error) {
	posts, err := r.FindByAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	return ids, nil
}

func (r *memoryPosts) AddLike(ctx context.Context, postID, userID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return ErrPostNotFound
	}
	likers, ok := r.s.likes[postID]
	if !ok {
		likers = make(map[string]time.Time)
		r.s.likes[postID] = likers
	}
	if _, ok := likers[userID]; !ok {
		likers[userID] = now()
	}
	return nil
}

func (r *memoryPosts) RemoveLike(ctx context.Context, postID, userID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return ErrPostNotFound
	}
	delete(r.s.likes[postID], userID)
	return nil
}

func (r *memoryPosts) AddComment(ctx context.Context, comment *models.Comment) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[comment.PostID]; !ok {
		return ErrPostNotFound
	}
	comment.EnsureID()
	comment.CreatedAt = now()
	comment.UpdatedAt = comment.CreatedAt

	stored := *comment
	stored.Author = nil
	r.s.comments[comment.PostID] = append(r.s.comments[comment.PostID], stored)
	return nil
}

func (r *memoryPosts) FindComments(ctx context.Context, postID string) ([]models.Comment, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.posts[postID]; !ok {
		return nil, ErrPostNotFound
	}
	return r.commentsOf(postID), nil
}

func (r *memoryPosts) Delete(ctx context.Context, postID string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.posts[postID]; !ok {
		return ErrPostNotFound
	}
	delete(r.s.posts, postID)
	delete(r.s.comments, postID)
	delete(r.s.likes, postID)
	for _, saved := range r.s.bookmarks {
		delete(saved, postID)
	}
	return nil
}

// ============================================
// Conversations
// ============================================

type memoryConversations struct{ s *MemoryStore }

func (r *memoryConversations) AppendMessage(ctx context.Context, senderID, receiverID, text string) (*models.Message, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	low, high := models.ConversationPair(senderID, receiverID)
	key := [2]string{low, high}
	conversation, ok := r.s.conversations[key]
	if !ok {
		conversation = &models.Conversation{ParticipantA: low, ParticipantB: high}
		conversation.EnsureID()
		conversation.CreatedAt = now()
		r.s.conversations[key] = conversation
	}

	message := models.Message{
		ConversationID: conversation.ID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Text:           text,
	}
	message.EnsureID()
	message.CreatedAt = now()
	message.UpdatedAt = message.CreatedAt
	conversation.UpdatedAt = message.CreatedAt

	r.s.messages[conversation.ID] = append(r.s.messages[conversation.ID], message)
	return &message, nil
}

func (r *memoryConversations) FindByParticipants(ctx context.Context, a, b string) (*models.Conversation, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	low, high := models.ConversationPair(a, b)
	conversation, ok := r.s.conversations[[2]string{low, high}]
	if !ok {
		return nil, ErrConversationNotFound
	}
	copied := *conversation
	return &copied, nil
}

func (r *memoryConversations) FindMessages(ctx context.Context, a, b string) ([]models.Message, error) {
	if err := ctxErr(ctx); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	low, high := models.ConversationPair(a, b)
	conversation, ok := r.s.conversations[[2]string{low, high}]
	if !ok {
		return []models.Message{}, nil
	}
	src := r.s.messages[conversation.ID]
	messages := make([]models.Message, len(src))
	copy(messages, src)
	return messages, nil
}
