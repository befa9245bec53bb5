package sqlinline

const planColumns = `id::text, name, description, price_cents, projects_limit, team_members_limit, tasks_limit, features, is_active, created_at`

const QUpsertPlan = `--sql 6717f07f-7df7-4f22-8e2b-182f1fdb1bec
insert into subscription_plans (id, name, description, price_cents, projects_limit, team_members_limit, tasks_limit, features, is_active, created_at)
values (gen_random_uuid(), $1::text, $2::text, $3::bigint, $4::int, $5::int, $6::int, $7::jsonb, $8::boolean, now())
on conflict (name) do update set
    description = excluded.description,
    price_cents = excluded.price_cents,
    projects_limit = excluded.projects_limit,
    team_members_limit = excluded.team_members_limit,
    tasks_limit = excluded.tasks_limit,
    features = excluded.features,
    is_active = excluded.is_active
returning id::text, created_at;
`

const QSelectPlanByID = `--sql 8ba6ea02-55bb-4b46-a454-a9f34e6f8542
select ` + planColumns + `
from subscription_plans
where id = $1::uuid
limit 1;
`

const QSelectPlanByName = `--sql 435c0902-4bc7-40ef-9c21-527923a1f42f
select ` + planColumns + `
from subscription_plans
where name = $1::text
limit 1;
`

const QListActivePlans = `--sql 342d0043-0f44-4e45-87e1-2fc396f51bf5
select ` + planColumns + `
from subscription_plans
where is_active
order by price_cents asc, name asc;
`
