package multisig

import (
	"context"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/quorum"
	. "github.com/smartystreets/goconvey/convey"
)

func governanceOp(t testing.TB, target string, msg quorum.Msg) *Operation {
	t.Helper()
	raw, err := proto.Marshal(msg)
	if err != nil {
		t.Fatalf("cannot marshal %T: %s", msg, err)
	}
	return &Operation{Target: target, Payload: raw}
}

func TestScenarios(t *testing.T) {
	Convey("Given a group of three owners with threshold two", t, func() {
		ctx := context.Background()
		db := newStore()
		ctrl, inv := newTestController()
		owners := addrs(t, 3)
		x, y, z := owners[0], owners[1], owners[2]
		groupID := mustCreateGroup(t, ctrl, db, owners, 2)

		Convey("When X proposes an operation", func() {
			proposalID := mustPropose(t, ctrl, db, groupID, externalOp(), x)

			Convey("It is approved by X only", func() {
				p, err := ctrl.Proposal(db, proposalID)
				So(err, ShouldBeNil)
				So(p.Approvals, ShouldResemble, []bool{true, false, false})
				So(p.Executed, ShouldBeFalse)
			})

			Convey("It cannot be executed before Y approves", func() {
				_, err := ctrl.Execute(ctx, db, proposalID)
				So(ErrQuorumNotReached.Is(err), ShouldBeTrue)
				So(inv.calls, ShouldBeEmpty)
			})

			Convey("Once Y approves it is executed exactly once", func() {
				_, err := ctrl.Approve(ctx, db, proposalID, y)
				So(err, ShouldBeNil)

				res, err := ctrl.Execute(ctx, db, proposalID)
				So(err, ShouldBeNil)
				So(res.ProposalID, ShouldResemble, proposalID)
				So(inv.calls, ShouldHaveLength, 1)

				p, err := ctrl.Proposal(db, proposalID)
				So(err, ShouldBeNil)
				So(p.Executed, ShouldBeTrue)

				_, err = ctrl.Execute(ctx, db, proposalID)
				So(ErrAlreadyExecuted.Is(err), ShouldBeTrue)
				So(inv.calls, ShouldHaveLength, 1)

				Convey("Approving it afterwards does not make it executable", func() {
					_, err := ctrl.Approve(ctx, db, proposalID, z)
					So(err, ShouldBeNil)
					_, err = ctrl.Execute(ctx, db, proposalID)
					So(ErrAlreadyExecuted.Is(err), ShouldBeTrue)
				})
			})

			Convey("And the owners change to include W before anyone approves", func() {
				w := addrs(t, 1)[0]
				change := governanceOp(t, pathSetOwnersMsg, &SetOwnersMsg{
					Metadata: &quorum.Metadata{Schema: 1},
					Owners:   []quorum.Address{x, y, z, w},
				})
				changeID := mustPropose(t, ctrl, db, groupID, change, y)
				_, err := ctrl.Approve(ctx, db, changeID, z)
				So(err, ShouldBeNil)
				_, err = ctrl.Execute(ctx, db, changeID)
				So(err, ShouldBeNil)

				g, err := ctrl.Group(db, groupID)
				So(err, ShouldBeNil)
				So(g.Owners, ShouldHaveLength, 4)
				So(g.ConfigVersion, ShouldEqual, 1)
				So(g.Threshold, ShouldEqual, 2)

				Convey("The original proposal is stale", func() {
					_, err := ctrl.Approve(ctx, db, proposalID, y)
					So(ErrStaleConfig.Is(err), ShouldBeTrue)
					_, err = ctrl.Execute(ctx, db, proposalID)
					So(ErrStaleConfig.Is(err), ShouldBeTrue)

					p, err := ctrl.Proposal(db, proposalID)
					So(err, ShouldBeNil)
					So(p.Approvals, ShouldResemble, []bool{true, false, false})
					So(p.Executed, ShouldBeFalse)
				})

				Convey("A new proposal counts the new owner", func() {
					id := mustPropose(t, ctrl, db, groupID, externalOp(), w)
					p, err := ctrl.Proposal(db, id)
					So(err, ShouldBeNil)
					So(p.Approvals, ShouldResemble, []bool{false, false, false, true})
				})
			})

			Convey("A threshold change does not make it stale", func() {
				change := governanceOp(t, pathChangeThresholdMsg, &ChangeThresholdMsg{
					Metadata:  &quorum.Metadata{Schema: 1},
					Threshold: 3,
				})
				changeID := mustPropose(t, ctrl, db, groupID, change, y)
				_, err := ctrl.Approve(ctx, db, changeID, z)
				So(err, ShouldBeNil)
				_, err = ctrl.Execute(ctx, db, changeID)
				So(err, ShouldBeNil)

				g, err := ctrl.Group(db, groupID)
				So(err, ShouldBeNil)
				So(g.ConfigVersion, ShouldEqual, 0)
				So(g.Threshold, ShouldEqual, 3)

				_, err = ctrl.Approve(ctx, db, proposalID, y)
				So(err, ShouldBeNil)
				_, err = ctrl.Execute(ctx, db, proposalID)
				So(ErrQuorumNotReached.Is(err), ShouldBeTrue)
				_, err = ctrl.Approve(ctx, db, proposalID, z)
				So(err, ShouldBeNil)
				_, err = ctrl.Execute(ctx, db, proposalID)
				So(err, ShouldBeNil)
			})
		})

		Convey("A threshold of five requested by quorum is rejected", func() {
			change := governanceOp(t, pathChangeThresholdMsg, &ChangeThresholdMsg{
				Metadata:  &quorum.Metadata{Schema: 1},
				Threshold: 5,
			})
			changeID := mustPropose(t, ctrl, db, groupID, change, x)
			_, err := ctrl.Approve(ctx, db, changeID, y)
			So(err, ShouldBeNil)

			_, err = ctrl.Execute(ctx, db, changeID)
			So(ErrInvalidThreshold.Is(err), ShouldBeTrue)

			g, err := ctrl.Group(db, groupID)
			So(err, ShouldBeNil)
			So(g.Threshold, ShouldEqual, 2)
			p, err := ctrl.Proposal(db, changeID)
			So(err, ShouldBeNil)
			So(p.Executed, ShouldBeFalse)
		})
	})

	Convey("Given a group of two owners with threshold two", t, func() {
		ctx := context.Background()
		db := newStore()
		ctrl, _ := newTestController()
		owners := addrs(t, 2)
		x, y := owners[0], owners[1]
		groupID := mustCreateGroup(t, ctrl, db, owners, 2)

		Convey("Removing Y by quorum lowers the threshold to one", func() {
			change := governanceOp(t, pathSetOwnersMsg, &SetOwnersMsg{
				Metadata: &quorum.Metadata{Schema: 1},
				Owners:   []quorum.Address{x},
			})
			changeID := mustPropose(t, ctrl, db, groupID, change, x)
			_, err := ctrl.Approve(ctx, db, changeID, y)
			So(err, ShouldBeNil)
			_, err = ctrl.Execute(ctx, db, changeID)
			So(err, ShouldBeNil)

			g, err := ctrl.Group(db, groupID)
			So(err, ShouldBeNil)
			So(g.Owners, ShouldResemble, []quorum.Address{x})
			So(g.Threshold, ShouldEqual, 1)
			So(g.ConfigVersion, ShouldEqual, 1)

			Convey("Y can no longer propose", func() {
				_, _, err := ctrl.Propose(ctx, db, groupID, externalOp(), y)
				So(ErrUnknownSigner.Is(err), ShouldBeTrue)
			})

			Convey("X alone reaches the quorum", func() {
				id := mustPropose(t, ctrl, db, groupID, externalOp(), x)
				_, err := ctrl.Execute(ctx, db, id)
				So(err, ShouldBeNil)
			})
		})
	})
}
