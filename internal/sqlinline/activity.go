package sqlinline

const activityColumns = `id::text, actor_id::text, action, target_kind, target_id::text, description, ip_address, user_agent, country, created_at`

const QInsertActivity = `--sql 01eabf03-274a-48ea-8b13-c0881beeefa0
insert into activity_logs (id, actor_id, action, target_kind, target_id, description, ip_address, user_agent, country, created_at)
values ($1::uuid, $2::uuid, $3::text, $4::text, $5::uuid, $6::text, $7::text, $8::text, $9::text, now())
returning created_at;
`

const QListActivityByActor = `--sql 1d97e1d2-0ee9-4743-be02-276f0c0cbb7c
select ` + activityColumns + `
from activity_logs
where actor_id = $1::uuid
order by created_at desc
limit $2::int;
`

const QListActivityByTarget = `--sql e5ff9306-b98f-442c-9a68-22b3c80eeaf1
select ` + activityColumns + `
from activity_logs
where target_kind = $1::text
  and target_id = $2::uuid
order by created_at desc
limit $3::int;
`
