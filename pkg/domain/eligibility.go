package domain

// EligibilityKind tags which entitlement, if any, a booking should spend.
// The kind decides which reservation-creation endpoint gets called.
type EligibilityKind int

const (
	EligibilityNone EligibilityKind = iota
	EligibilitySubscription
	EligibilityComboSubscription
	EligibilityPack
)

// Eligibility is the outcome of the client-side entitlement check.
// It is advisory only: the backend's can-make-reservation endpoint has
// the final word on whether booking is allowed. This result is used to
// pick which entitlement to spend once the backend says yes.
type Eligibility struct {
	Kind         EligibilityKind
	Subscription *Subscription
	Pack         *Pack
}

// Allowed reports whether any entitlement was selected.
func (e Eligibility) Allowed() bool {
	return e.Kind != EligibilityNone
}

// DecideEligibility picks the entitlement to spend for a class of the
// given type, in order: plain subscription, combo subscription, pack.
// First match wins. The branch taken depends on whether the class is in
// the reformer category.
//
// The reformer pack branch intentionally compares the pack's remaining
// sessions against this week's reformer reservation count under the
// subscription, not the pack. That mirrors the deployed behavior; see
// DESIGN.md before touching it.
func DecideEligibility(sessionType SessionType, sub *Subscription, packs []Pack) Eligibility {
	if sessionType.IsReformer() {
		return decideReformer(sub, packs)
	}
	return decideOther(sessionType, sub, packs)
}

func decideReformer(sub *Subscription, packs []Pack) Eligibility {
	weekReformer := sub.WeekCount(SessionReformer)

	if sub != nil && sub.IsValid && sub.Product.Recurring != nil {
		rec := sub.Product.Recurring
		switch rec.Type {
		case ProductSubscription:
			if rec.IncludesReformer && weekReformer < rec.AmountPerWeek {
				return Eligibility{Kind: EligibilitySubscription, Subscription: sub}
			}
		case ProductSubscriptionCombo:
			if rec.AmountReformerPerWeek > 0 && weekReformer < rec.AmountReformerPerWeek {
				return Eligibility{Kind: EligibilityComboSubscription, Subscription: sub}
			}
		}
	}

	for i := range packs {
		p := &packs[i]
		if !p.CoversReformer() {
			continue
		}
		if p.RemainingSessions > 0 && weekReformer < p.RemainingSessions {
			return Eligibility{Kind: EligibilityPack, Pack: p}
		}
		break // only the first matching pack is considered
	}

	return Eligibility{}
}

func decideOther(sessionType SessionType, sub *Subscription, packs []Pack) Eligibility {
	weekSame := sub.WeekCount(sessionType)

	if sub != nil && sub.IsValid && sub.Product.Recurring != nil {
		rec := sub.Product.Recurring
		switch rec.Type {
		case ProductSubscription:
			if !rec.IncludesReformer && weekSame < rec.AmountPerWeek {
				return Eligibility{Kind: EligibilitySubscription, Subscription: sub}
			}
		case ProductSubscriptionCombo:
			if rec.AmountOtherPerWeek > 0 && weekSame < rec.AmountOtherPerWeek {
				return Eligibility{Kind: EligibilityComboSubscription, Subscription: sub}
			}
		}
	}

	for i := range packs {
		p := &packs[i]
		if p.Product.Recurring != nil && p.Product.Recurring.IncludesReformer {
			continue
		}
		if p.RemainingSessions > 0 {
			return Eligibility{Kind: EligibilityPack, Pack: p}
		}
		break
	}

	return Eligibility{}
}
