package gogit

import (
	"container/heap"
	"context"
	"errors"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

type divergenceSide uint8

const (
	localDivergenceSide divergenceSide = 1 << iota
	upstreamDivergenceSide
)

const sharedDivergenceSide = localDivergenceSide | upstreamDivergenceSide

// divergenceWalk visits the histories of two tips together, newest commit
// first, and stops once every pending commit is reachable from both tips.
// The cost follows the size of the divergence rather than the whole history.
type divergenceWalk struct {
	repository *git.Repository
	sides      map[plumbing.Hash]divergenceSide
	parents    map[plumbing.Hash][]plumbing.Hash
	pending    *commitQueue
}

func newDivergenceWalk(repository *git.Repository) *divergenceWalk {
	return &divergenceWalk{
		repository: repository,
		sides:      map[plumbing.Hash]divergenceSide{},
		parents:    map[plumbing.Hash][]plumbing.Hash{},
		pending:    &commitQueue{},
	}
}

func (walk *divergenceWalk) count(executionContext context.Context, localTip *object.Commit, upstreamTip *object.Commit) (int, int, error) {
	walk.mark(localTip, localDivergenceSide)
	walk.mark(upstreamTip, upstreamDivergenceSide)

	for walk.pending.Len() > 0 && !walk.pending.allShared(walk.sides) {
		if contextError := executionContext.Err(); contextError != nil {
			return 0, 0, contextError
		}
		commit := heap.Pop(walk.pending).(*object.Commit)
		side := walk.sides[commit.Hash]
		walk.parents[commit.Hash] = commit.ParentHashes
		for _, parentHash := range commit.ParentHashes {
			parent, parentError := walk.repository.CommitObject(parentHash)
			if parentError != nil {
				// Shallow clones stop at missing parents.
				if errors.Is(parentError, plumbing.ErrObjectNotFound) {
					continue
				}
				return 0, 0, fmt.Errorf(commitWalkTemplateConstant, commit.Hash, parentError)
			}
			walk.mark(parent, side)
		}
	}

	aheadCount := 0
	behindCount := 0
	for _, side := range walk.sides {
		switch side {
		case localDivergenceSide:
			aheadCount++
		case upstreamDivergenceSide:
			behindCount++
		}
	}
	return aheadCount, behindCount, nil
}

func (walk *divergenceWalk) mark(commit *object.Commit, side divergenceSide) {
	if _, seen := walk.sides[commit.Hash]; !seen {
		walk.sides[commit.Hash] = side
		heap.Push(walk.pending, commit)
		return
	}
	walk.spread(commit.Hash, side)
}

// spread adds side to a commit already seen and to every ancestor the walk
// has expanded below it, so skewed commit dates cannot leave stale counts.
func (walk *divergenceWalk) spread(commitHash plumbing.Hash, side divergenceSide) {
	stack := []plumbing.Hash{commitHash}
	for len(stack) > 0 {
		currentHash := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		currentSide, seen := walk.sides[currentHash]
		if !seen || currentSide|side == currentSide {
			continue
		}
		walk.sides[currentHash] = currentSide | side
		stack = append(stack, walk.parents[currentHash]...)
	}
}

// commitQueue pops the most recently committed commit first.
type commitQueue []*object.Commit

func (queue commitQueue) Len() int { return len(queue) }

func (queue commitQueue) Less(leftIndex int, rightIndex int) bool {
	return queue[leftIndex].Committer.When.After(queue[rightIndex].Committer.When)
}

func (queue commitQueue) Swap(leftIndex int, rightIndex int) {
	queue[leftIndex], queue[rightIndex] = queue[rightIndex], queue[leftIndex]
}

func (queue *commitQueue) Push(value any) {
	*queue = append(*queue, value.(*object.Commit))
}

func (queue *commitQueue) Pop() any {
	current := *queue
	last := current[len(current)-1]
	*queue = current[:len(current)-1]
	return last
}

func (queue commitQueue) allShared(sides map[plumbing.Hash]divergenceSide) bool {
	for _, commit := range queue {
		if sides[commit.Hash] != sharedDivergenceSide {
			return false
		}
	}
	return true
}
