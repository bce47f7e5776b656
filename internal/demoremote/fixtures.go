package demoremote

import (
	"sort"
	"strconv"

	"github.com/google/uuid"
)

// actor is the common shape behind the Actor union (User, Bot, Organization).
type actor struct {
	Typename string
	ID       string
	Login    string
}

type repository struct {
	ID       string
	IssueIDs []string
}

type issue struct {
	ID         string
	Title      string
	CommentIDs []string
}

type issueComment struct {
	ID       string
	Body     string
	AuthorID string
}

// fixtureSet holds the demo remote's fixed, in-memory GitHub-shaped graph:
// one repository, a handful of issues, each with a couple of comments
// authored by a mix of users, bots, and an organization.
type fixtureSet struct {
	repositories map[string]repository
	issues       map[string]issue
	comments     map[string]issueComment
	actors       map[string]actor
}

// RootRepositoryID is the fixed id of the one repository this demo graph
// serves, the seed cmd/mirrorctl --refresh.demo registers before its first refresh
// round.
const RootRepositoryID = "repo:sourcecred/example-github"

func newFixtureSet() *fixtureSet {
	fs := &fixtureSet{
		repositories: map[string]repository{},
		issues:       map[string]issue{},
		comments:     map[string]issueComment{},
		actors:       map[string]actor{},
	}

	fs.addActor("User", "octocat", "hubot-bot")
	fs.addActor("Bot", "release-bot", "release-bot")
	fs.addActor("Organization", "acme-inc", "acme-inc")

	repoID := RootRepositoryID
	issueIDs := make([]string, 0, 4)
	for i := 1; i <= 4; i++ {
		issueID := uuidFrom("issue", repoID, i)
		commentIDs := make([]string, 0, 2)
		for j := 1; j <= 2; j++ {
			commentID := uuidFrom("comment", issueID, j)
			author := fs.actorByIndex((i + j) % len(fs.actorOrder()))
			fs.comments[commentID] = issueComment{
				ID:       commentID,
				Body:     "comment body",
				AuthorID: author.ID,
			}
			commentIDs = append(commentIDs, commentID)
		}
		fs.issues[issueID] = issue{
			ID:         issueID,
			Title:      "issue title",
			CommentIDs: commentIDs,
		}
		issueIDs = append(issueIDs, issueID)
	}

	fs.repositories[repoID] = repository{
		ID:       repoID,
		IssueIDs: issueIDs,
	}

	return fs
}

func (fs *fixtureSet) addActor(typename, login, slug string) {
	id := "actor:" + slug
	fs.actors[id] = actor{Typename: typename, ID: id, Login: login}
}

func (fs *fixtureSet) actorOrder() []string {
	order := make([]string, 0, len(fs.actors))
	for id := range fs.actors {
		order = append(order, id)
	}
	sort.Strings(order)
	return order
}

func (fs *fixtureSet) actorByIndex(i int) actor {
	order := fs.actorOrder()
	return fs.actors[order[i%len(order)]]
}

// uuidFrom derives a stable synthetic id so repeated fixture rebuilds
// (in different test runs) still produce identical ids.
func uuidFrom(parts ...interface{}) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(sprintJoin(parts))).String()
}

func sprintJoin(parts []interface{}) string {
	s := ""
	for i, p := range parts {
		if i > 0 {
			s += ":"
		}
		s += toString(p)
	}
	return s
}

func toString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}
