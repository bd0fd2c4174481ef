package assistant

import (
	"context"

	"github.com/daybook/daybook/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

func (s *ServiceImpl) DeleteEvent(ctx context.Context, input DeleteEventInput) (Result, error) {
	loc, err := sessionLocation(ctx)
	if err != nil {
		return Result{}, err
	}

	currentDate, err := optionalDate(input.StartDate)
	if err != nil {
		return reply("Sorry, I couldn't process that delete request."), nil
	}

	habits, err := s.habits.FindByTitle(ctx, input.Title)
	if err != nil {
		return Result{}, err
	}
	if len(habits) > 0 {
		date, hasDate := currentDate.Get()
		if !hasDate {
			return reply("Cannot delete event '%s' without a start date and time because it is a recurring event. Please provide the start date and time to identify the specific occurrence to delete.", input.Title), nil
		}

		matches := matchingHabits(habits, date, input.StartTime)
		spoken := spokenDate(date, stringValue(input.StartTime))
		switch {
		case len(matches) == 1:
			cfg := matches[0]
			switch {
			case input.ThisEventOnly:
				if err := s.habits.AddException(ctx, cfg.ID, date); err != nil {
					return Result{}, err
				}
				return reply("Successfully deleted only the occurrence on %s for recurring event '%s'.", spoken, cfg.Name), nil
			case input.ThisAndFutureEvents:
				if err := s.habits.StopFrom(ctx, cfg.ID, date); err != nil {
					return Result{}, err
				}
				return reply("Successfully deleted this and future occurrences from %s for recurring event '%s'.", spoken, cfg.Name), nil
			default:
				return reply("Do you want to delete only the occurrence on %s? Or do you want to delete this event and all future occurrences?", spoken), nil
			}
		case len(matches) > 1:
			return reply("Unable to delete because I found %d recurring events with title '%s' matching the provided start date and time.", len(matches), input.Title), nil
		default:
			log.Infof("No occurrence of a recurring event '%s' on %s, checking saved events", input.Title, spoken)
		}
	}

	target, result, found, err := s.findStandaloneTarget(ctx, input.Title, currentDate, input.StartTime, loc, "delete")
	if err != nil || !found {
		return result, err
	}

	if habitID, detached := target.SourceHabitID.Get(); detached {
		spoken := spokenDateTime(target.Start.In(loc))
		switch {
		case input.ThisEventOnly:
			if err := s.events.Delete(ctx, target.ID); err != nil {
				return Result{}, err
			}
			return reply("Successfully deleted only the occurrence on %s for recurring event '%s'.", spoken, input.Title), nil
		case input.ThisAndFutureEvents:
			if err := s.habits.StopFrom(ctx, habitID, recurrence.DateOf(target.Start.In(loc))); err != nil {
				return Result{}, err
			}
			if err := s.events.Delete(ctx, target.ID); err != nil {
				return Result{}, err
			}
			return reply("Successfully deleted this and future occurrences from %s for recurring event '%s'.", spoken, input.Title), nil
		default:
			return reply("Do you want to delete only the occurrence on %s? Or do you want to delete this event and all future occurrences?", spoken), nil
		}
	}

	if err := s.events.Delete(ctx, target.ID); err != nil {
		return Result{}, err
	}
	return reply("Successfully deleted the event '%s'.", input.Title), nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
