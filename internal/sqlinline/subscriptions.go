package sqlinline

const subscriptionColumns = `id::text, user_id::text, plan_id::text, status, start_date, end_date, trial_end_date, auto_renew, created_at, updated_at`

const QSelectSubscriptionByUser = `--sql 8387b17b-f007-45fc-a4d8-db7b6e94e7a6
select ` + subscriptionColumns + `
from user_subscriptions
where user_id = $1::uuid
limit 1;
`

const QUpsertSubscription = `--sql 6679cbb2-a493-41cd-a8cd-a01b99df9e1f
insert into user_subscriptions (id, user_id, plan_id, status, start_date, end_date, trial_end_date, auto_renew, created_at, updated_at)
values (gen_random_uuid(), $1::uuid, $2::uuid, $3::text, $4::timestamptz, $5::timestamptz, $6::timestamptz, $7::boolean, now(), now())
on conflict (user_id) do update set
    plan_id = excluded.plan_id,
    status = excluded.status,
    start_date = excluded.start_date,
    end_date = excluded.end_date,
    trial_end_date = excluded.trial_end_date,
    auto_renew = excluded.auto_renew,
    updated_at = now()
returning id::text, created_at, updated_at;
`

const QListActiveSubscriptionsEndingBetween = `--sql cb2460d1-373b-4dcf-9f98-968efc4ae4e6
select ` + subscriptionColumns + `
from user_subscriptions
where status = 'active'
  and end_date >= $1::timestamptz
  and end_date < $2::timestamptz
order by end_date asc;
`
